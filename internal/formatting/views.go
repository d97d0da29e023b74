package formatting

import (
	"sort"

	"github.com/giantswarm/lineage/internal/dependency"
	"github.com/giantswarm/lineage/internal/status"
)

// Action tells what resolving a plan against the store did.
type Action string

const (
	ActionReused     Action = "reused"
	ActionNewVersion Action = "new version"
	ActionNew        Action = "new"
)

// Decision is the outcome of resolving one plan.
type Decision struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Action      Action `json:"action"`
	ID          string `json:"id"`
	DerivedFrom string `json:"derivedFrom,omitempty"`
}

// GraphView is the serialisable form of an ordered graph.
type GraphView struct {
	Order []GraphNodeView `json:"order"`
	Edges []GraphEdgeView `json:"edges"`
}

// GraphNodeView is one node of a GraphView.
type GraphNodeView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	DependsOn []string `json:"dependsOn,omitempty"`
}

// GraphEdgeView is one edge of a GraphView. Nodes are referenced by name.
type GraphEdgeView struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Output string `json:"output,omitempty"`
	Input  string `json:"input,omitempty"`
	Path   string `json:"path,omitempty"`
}

// NewGraphView lists the nodes of g in order followed by its edges.
func NewGraphView(g *dependency.Graph, order []dependency.NodeID) GraphView {
	view := GraphView{Order: []GraphNodeView{}, Edges: []GraphEdgeView{}}
	for _, id := range order {
		n := g.Get(id)
		if n == nil {
			continue
		}
		nv := GraphNodeView{ID: string(n.ID), Name: nodeName(g, n.ID), Kind: n.Kind.String()}
		for _, dep := range n.DependsOn {
			nv.DependsOn = append(nv.DependsOn, nodeName(g, dep))
		}
		view.Order = append(view.Order, nv)
	}
	for _, e := range g.Edges() {
		view.Edges = append(view.Edges, GraphEdgeView{
			From:   nodeName(g, e.From),
			To:     nodeName(g, e.To),
			Output: e.Output,
			Input:  e.Input,
			Path:   e.Path,
		})
	}
	return view
}

func nodeName(g *dependency.Graph, id dependency.NodeID) string {
	if n := g.Get(id); n != nil && n.FriendlyName != "" {
		return n.FriendlyName
	}
	return string(id)
}

// statusRow is one line of the status table.
type statusRow struct {
	state string
	path  string
	cause []string
}

func statusRows(st *status.Status) []statusRow {
	var rows []statusRow
	for _, p := range sortedKeys(st.OutdatedOutputs) {
		rows = append(rows, statusRow{state: "outdated", path: p, cause: st.OutdatedOutputs[p]})
	}
	for _, id := range sortedKeys(st.OutdatedActivities) {
		rows = append(rows, statusRow{state: "outdated activity", path: id, cause: st.OutdatedActivities[id]})
	}
	for _, p := range st.ModifiedInputs {
		rows = append(rows, statusRow{state: "modified", path: p})
	}
	for _, p := range st.DeletedInputs {
		rows = append(rows, statusRow{state: "deleted", path: p})
	}
	return rows
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
