package formatting

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/classifier"
	"github.com/giantswarm/lineage/internal/dependency"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/internal/status"
	pkgstrings "github.com/giantswarm/lineage/pkg/strings"
)

const timeLayout = "2006-01-02 15:04:05"

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatPlans lists plans one per row.
func (f *TableFormatter) FormatPlans(plans []plan.AbstractPlan) error {
	if len(plans) == 0 {
		f.printEmptyMessage("No plans found")
		return nil
	}

	t := f.createTable("NAME", "KIND", "ID", "DERIVED FROM", "CREATED", "STATE")
	for _, p := range plans {
		meta := p.Meta()
		state := "active"
		if meta.IsTombstone() {
			state = "removed"
		}
		t.AppendRow(table.Row{
			f.highlight(meta.Name),
			meta.Kind,
			meta.ID,
			dash(meta.DerivedFrom),
			meta.DateCreated.Local().Format(timeLayout),
			state,
		})
	}
	t.Render()
	f.printTotal(len(plans), "plans")
	return nil
}

// FormatPlan shows the metadata of one plan followed by its arguments or
// its children.
func (f *TableFormatter) FormatPlan(p plan.AbstractPlan) error {
	meta := p.Meta()
	t := f.createTable("FIELD", "VALUE")
	t.AppendRow(table.Row{f.highlight("Name"), meta.Name})
	t.AppendRow(table.Row{f.highlight("ID"), meta.ID})
	t.AppendRow(table.Row{f.highlight("Kind"), meta.Kind})
	if meta.Description != "" {
		t.AppendRow(table.Row{f.highlight("Description"), pkgstrings.Truncate(meta.Description, pkgstrings.DefaultColumnMaxLen)})
	}
	if len(meta.Keywords) > 0 {
		t.AppendRow(table.Row{f.highlight("Keywords"), strings.Join(meta.Keywords, ", ")})
	}
	t.AppendRow(table.Row{f.highlight("Derived from"), dash(meta.DerivedFrom)})
	t.AppendRow(table.Row{f.highlight("Created"), meta.DateCreated.Local().Format(timeLayout)})
	if meta.InvalidatedAt != nil {
		t.AppendRow(table.Row{f.highlight("Removed"), meta.InvalidatedAt.Local().Format(timeLayout)})
	}

	switch typed := p.(type) {
	case *plan.Plan:
		line, err := typed.CommandLine()
		if err != nil {
			line = typed.Command
		}
		t.AppendRow(table.Row{f.highlight("Command"), line})
		t.AppendRow(table.Row{f.highlight("Success codes"), joinInts(typed.SuccessCodes)})
		t.Render()
		f.renderArguments(typed.Arguments)
	case *plan.CompositePlan:
		t.Render()
		children := f.createTable("#", "STEP", "KIND", "ID")
		for i, child := range typed.Plans {
			children.AppendRow(table.Row{i + 1, f.highlight(child.GetName()), child.GetKind(), child.GetID()})
		}
		children.Render()
	default:
		t.Render()
	}
	return nil
}

func (f *TableFormatter) renderArguments(args plan.Arguments) {
	t := f.createTable("POS", "KIND", "NAME", "PREFIX", "VALUE", "STREAM")
	rows := 0
	add := func(kind plan.ArgumentKind, a plan.Argument, value string, stream plan.Stream) {
		pos := "-"
		if a.Position > 0 {
			pos = strconv.Itoa(a.Position)
		}
		name := a.Name
		if a.Implicit {
			name += " (implicit)"
		}
		t.AppendRow(table.Row{pos, kind, f.highlight(name), strconv.Quote(a.Prefix), value, dash(string(stream))})
		rows++
	}
	for _, p := range args.Parameters {
		add(plan.KindParameter, p.Argument, p.Value, plan.StreamNone)
	}
	for _, in := range args.Inputs {
		add(plan.KindInput, in.Argument, in.Path, in.MappedTo)
	}
	for _, out := range args.Outputs {
		add(plan.KindOutput, out.Argument, out.Path, out.MappedTo)
	}
	if rows == 0 {
		return
	}
	t.Render()
}

// FormatDecisions reports what resolving a workflow did for each plan.
func (f *TableFormatter) FormatDecisions(decisions []Decision) error {
	if len(decisions) == 0 {
		f.printEmptyMessage("No plans resolved")
		return nil
	}
	t := f.createTable("NAME", "KIND", "ACTION", "ID", "DERIVED FROM")
	for _, d := range decisions {
		t.AppendRow(table.Row{f.highlight(d.Name), d.Kind, f.action(d.Action), d.ID, dash(d.DerivedFrom)})
	}
	t.Render()
	return nil
}

// FormatGraph prints the execution order and the edges between the nodes.
func (f *TableFormatter) FormatGraph(g *dependency.Graph, order []dependency.NodeID) error {
	view := NewGraphView(g, order)
	if len(view.Order) == 0 {
		f.printEmptyMessage("Graph is empty")
		return nil
	}

	t := f.createTable("#", "NAME", "KIND", "DEPENDS ON")
	for i, n := range view.Order {
		t.AppendRow(table.Row{i + 1, f.highlight(n.Name), n.Kind, dash(strings.Join(n.DependsOn, ", "))})
	}
	t.Render()

	if len(view.Edges) == 0 {
		return nil
	}
	edges := f.createTable("FROM", "OUTPUT", "TO", "INPUT", "PATH")
	for _, e := range view.Edges {
		edges.AppendRow(table.Row{e.From, dash(e.Output), e.To, dash(e.Input), dash(e.Path)})
	}
	edges.Render()
	return nil
}

// FormatStatus prints one row per stale path or activity.
func (f *TableFormatter) FormatStatus(st *status.Status) error {
	if st.UpToDate() {
		fmt.Fprintln(f.options.writer(), f.colorize(text.FgGreen, "Everything is up to date"))
		return nil
	}
	t := f.createTable("STATE", "PATH", "CAUSED BY")
	for _, row := range statusRows(st) {
		t.AppendRow(table.Row{f.state(row.state), row.path, dash(pkgstrings.TruncateList(row.cause, pkgstrings.DefaultColumnMaxLen))})
	}
	t.Render()
	return nil
}

// FormatClassification prints the base command and the classified arguments.
func (f *TableFormatter) FormatClassification(res *classifier.Result) error {
	w := f.options.writer()
	fmt.Fprintf(w, "%s %s\n", f.highlight("Base command:"), strings.Join(res.BaseCommand, " "))
	if len(res.Arguments) == 0 {
		return nil
	}
	t := f.createTable("POS", "KIND", "PREFIX", "VALUE", "STREAM", "TYPE")
	for _, a := range res.Arguments {
		kind := string(a.Kind)
		switch {
		case a.IsOutput:
			kind += " (output)"
		case a.IsDir:
			kind += " (dir)"
		}
		t.AppendRow(table.Row{a.Position, kind, strconv.Quote(a.Prefix), a.Value, dash(string(a.MappedTo)), dash(string(a.ValueType))})
	}
	t.Render()
	return nil
}

// FormatActivities lists recorded executions, oldest first.
func (f *TableFormatter) FormatActivities(acts []*activity.Activity) error {
	if len(acts) == 0 {
		f.printEmptyMessage("No activities recorded")
		return nil
	}
	t := f.createTable("ID", "PLAN", "STARTED", "DURATION", "EXIT", "READ", "WROTE")
	for _, a := range acts {
		exit := strconv.Itoa(a.ExitCode)
		if a.ExitCode != 0 {
			exit = f.colorize(text.FgRed, exit)
		}
		t.AppendRow(table.Row{
			a.ID,
			f.highlight(dash(a.PlanName)),
			a.StartedAt.Local().Format(timeLayout),
			a.EndedAt.Sub(a.StartedAt).Round(time.Millisecond),
			exit,
			len(a.Usages),
			len(a.Generations),
		})
	}
	t.Render()
	f.printTotal(len(acts), "activities")
	return nil
}

// FormatWarnings prints each warning on its own line.
func (f *TableFormatter) FormatWarnings(warnings []string) error {
	for _, w := range warnings {
		fmt.Fprintf(f.options.writer(), "%s %s\n", f.colorize(text.FgYellow, "warning:"), w)
	}
	return nil
}

// FormatData formats generic data using table logic
func (f *TableFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case map[string]interface{}:
		f.formatObjectData(d)
	case []interface{}:
		f.formatArrayData(d)
	case string:
		fmt.Fprintln(f.options.writer(), d)
	default:
		fmt.Fprintf(f.options.writer(), "%v\n", d)
	}
	return nil
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable(headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.writer())
	t.SetStyle(table.StyleRounded)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = f.colorize(text.FgHiCyan, h)
	}
	t.AppendHeader(row)
	return t
}

func (f *TableFormatter) colorize(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

func (f *TableFormatter) highlight(s string) string {
	return f.colorize(text.FgHiWhite, s)
}

func (f *TableFormatter) action(a Action) string {
	switch a {
	case ActionReused:
		return f.colorize(text.FgGreen, string(a))
	case ActionNewVersion:
		return f.colorize(text.FgYellow, string(a))
	default:
		return f.colorize(text.FgHiBlue, string(a))
	}
}

func (f *TableFormatter) state(s string) string {
	switch s {
	case "deleted":
		return f.colorize(text.FgRed, s)
	case "modified":
		return f.colorize(text.FgYellow, s)
	default:
		return f.colorize(text.FgHiMagenta, s)
	}
}

func (f *TableFormatter) printEmptyMessage(message string) {
	fmt.Fprintln(f.options.writer(), f.colorize(text.FgYellow, message))
}

func (f *TableFormatter) printTotal(n int, noun string) {
	if f.options.Quiet {
		return
	}
	fmt.Fprintf(f.options.writer(), "%s %d %s\n",
		f.colorize(text.FgHiBlue, "Total:"), n, f.colorize(text.FgHiBlue, noun))
}

// formatObjectData formats object data as key-value pairs
func (f *TableFormatter) formatObjectData(data map[string]interface{}) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := f.createTable("KEY", "VALUE")
	for _, key := range keys {
		valueStr := fmt.Sprintf("%v", data[key])
		if len(valueStr) > 100 {
			valueStr = valueStr[:97] + "..."
		}
		t.AppendRow(table.Row{f.highlight(key), valueStr})
	}
	t.Render()
}

// formatArrayData formats array data as a numbered list
func (f *TableFormatter) formatArrayData(data []interface{}) {
	if len(data) == 0 {
		f.printEmptyMessage("No items found")
		return
	}
	for i, item := range data {
		fmt.Fprintf(f.options.writer(), "  %d. %v\n", i+1, item)
	}
	f.printTotal(len(data), "items")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return joinInts(plan.DefaultSuccessCodes)
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
