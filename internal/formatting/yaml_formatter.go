package formatting

import (
	"fmt"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/classifier"
	"github.com/giantswarm/lineage/internal/dependency"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/internal/status"

	"sigs.k8s.io/yaml"
)

// YAMLFormatter provides YAML output formatting. Field names follow the JSON
// tags so that both structured formats agree.
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

func (f *YAMLFormatter) FormatPlans(plans []plan.AbstractPlan) error {
	if plans == nil {
		plans = []plan.AbstractPlan{}
	}
	return f.FormatData(plans)
}

func (f *YAMLFormatter) FormatPlan(p plan.AbstractPlan) error {
	return f.FormatData(p)
}

func (f *YAMLFormatter) FormatDecisions(decisions []Decision) error {
	if decisions == nil {
		decisions = []Decision{}
	}
	return f.FormatData(decisions)
}

func (f *YAMLFormatter) FormatGraph(g *dependency.Graph, order []dependency.NodeID) error {
	return f.FormatData(NewGraphView(g, order))
}

func (f *YAMLFormatter) FormatStatus(st *status.Status) error {
	return f.FormatData(st)
}

func (f *YAMLFormatter) FormatClassification(res *classifier.Result) error {
	return f.FormatData(res)
}

func (f *YAMLFormatter) FormatActivities(acts []*activity.Activity) error {
	if acts == nil {
		acts = []*activity.Activity{}
	}
	return f.FormatData(acts)
}

func (f *YAMLFormatter) FormatWarnings(warnings []string) error {
	if warnings == nil {
		warnings = []string{}
	}
	return f.FormatData(map[string][]string{"warnings": warnings})
}

// FormatData writes data as YAML.
func (f *YAMLFormatter) FormatData(data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	_, err = f.options.writer().Write(out)
	return err
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}
