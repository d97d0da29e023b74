package formatting

import (
	"encoding/json"
	"fmt"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/classifier"
	"github.com/giantswarm/lineage/internal/dependency"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/internal/status"
)

// JSONFormatter provides JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

func (f *JSONFormatter) FormatPlans(plans []plan.AbstractPlan) error {
	if plans == nil {
		plans = []plan.AbstractPlan{}
	}
	return f.FormatData(plans)
}

func (f *JSONFormatter) FormatPlan(p plan.AbstractPlan) error {
	return f.FormatData(p)
}

func (f *JSONFormatter) FormatDecisions(decisions []Decision) error {
	if decisions == nil {
		decisions = []Decision{}
	}
	return f.FormatData(decisions)
}

func (f *JSONFormatter) FormatGraph(g *dependency.Graph, order []dependency.NodeID) error {
	return f.FormatData(NewGraphView(g, order))
}

func (f *JSONFormatter) FormatStatus(st *status.Status) error {
	return f.FormatData(st)
}

func (f *JSONFormatter) FormatClassification(res *classifier.Result) error {
	return f.FormatData(res)
}

func (f *JSONFormatter) FormatActivities(acts []*activity.Activity) error {
	if acts == nil {
		acts = []*activity.Activity{}
	}
	return f.FormatData(acts)
}

func (f *JSONFormatter) FormatWarnings(warnings []string) error {
	if warnings == nil {
		warnings = []string{}
	}
	return f.FormatData(map[string][]string{"warnings": warnings})
}

// FormatData writes data as indented JSON. Shell metacharacters in command
// lines are kept as-is.
func (f *JSONFormatter) FormatData(data interface{}) error {
	enc := json.NewEncoder(f.options.writer())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}
