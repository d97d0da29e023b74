// Package formatting renders plans, graphs, classifications, activities and
// staleness reports for the CLI and the MCP server.
//
// Every formatter writes to Options.Writer (os.Stdout when nil). Table output
// is meant for people, JSON and YAML output for scripts; both structured
// formats share the same field names.
package formatting

import (
	"fmt"
	"io"
	"os"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/classifier"
	"github.com/giantswarm/lineage/internal/dependency"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/internal/status"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// OutputFormats lists the accepted values of the --output flag.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatTable, FormatJSON, FormatYAML}
}

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	for _, f := range OutputFormats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements
	Color  bool // Enable colored output
	Writer io.Writer
}

func (o Options) writer() io.Writer {
	if o.Writer == nil {
		return os.Stdout
	}
	return o.Writer
}

// Formatter renders lineage data
type Formatter interface {
	FormatPlans(plans []plan.AbstractPlan) error
	FormatPlan(p plan.AbstractPlan) error
	FormatDecisions(decisions []Decision) error
	FormatGraph(g *dependency.Graph, order []dependency.NodeID) error
	FormatStatus(st *status.Status) error
	FormatClassification(res *classifier.Result) error
	FormatActivities(acts []*activity.Activity) error
	FormatWarnings(warnings []string) error

	// Generic data formatting
	FormatData(data interface{}) error

	// Configuration
	SetOptions(options Options)
	GetOptions() Options
}

// Factory creates formatters for different output formats
type Factory interface {
	CreateFormatter(options Options) Formatter
}

// NewFactory creates a new formatter factory
func NewFactory() Factory {
	return &factory{}
}

type factory struct{}

// CreateFormatter creates the appropriate formatter based on options
func (f *factory) CreateFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}
