package dependency

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/pkg/logging"
)

// NodeID is the unique identifier for a node inside a graph: a plan id or an
// activity id.
type NodeID string

// NodeKind categorises nodes.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindPlan
	KindActivity
)

func (k NodeKind) String() string {
	switch k {
	case KindPlan:
		return "plan"
	case KindActivity:
		return "activity"
	default:
		return "unknown"
	}
}

// Port is a named path read or written by a node.
type Port struct {
	Name string
	Path string
}

// Node represents one executable unit together with its inputs and outputs.
// DependsOn is filled in by Build.
type Node struct {
	ID           NodeID
	FriendlyName string
	Kind         NodeKind
	Inputs       []Port
	Outputs      []Port
	DependsOn    []NodeID
}

// Edge links a producer to a consumer.
type Edge struct {
	From NodeID
	To   NodeID
	// Output and Input are the argument names on each side, Path the shared
	// path; all three are empty for explicit links
	Output string
	Input  string
	Path   string
}

// Description renders the edge for cycle reports.
func (e Edge) Description() string {
	if e.Path == "" {
		return "explicit link"
	}
	return fmt.Sprintf("output %s -> input %s (%s)", e.Output, e.Input, e.Path)
}

// Link is an explicit edge requested by the caller.
type Link struct {
	From NodeID
	To   NodeID
}

// Options control how Build derives edges.
type Options struct {
	// VirtualLinks links producers of a path to its consumers
	VirtualLinks bool
	// OrderedProducers only links producers that come before the consumer in
	// the input order, for graphs built from a history
	OrderedProducers bool
	// Links are always added
	Links []Link
}

// Graph is a directed graph of nodes.
type Graph struct {
	nodes map[NodeID]*Node
	order []NodeID
	edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[NodeID]*Node)}
}

// AddNode adds (or replaces) a node in the graph. New nodes are appended to
// the input order.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[NodeID]*Node)
	}
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	// Copy to avoid external mutations
	copied := n
	copied.Inputs = slices.Clone(n.Inputs)
	copied.Outputs = slices.Clone(n.Outputs)
	copied.DependsOn = slices.Clone(n.DependsOn)
	g.nodes[n.ID] = &copied
}

// AddEdge links two existing nodes. Duplicate edges are ignored.
func (g *Graph) AddEdge(e Edge) error {
	from, ok := g.nodes[e.From]
	if !ok {
		return fmt.Errorf("edge references unknown node %s", e.From)
	}
	to, ok := g.nodes[e.To]
	if !ok {
		return fmt.Errorf("edge references unknown node %s", e.To)
	}
	if slices.Contains(g.edges, e) {
		return nil
	}
	g.edges = append(g.edges, e)
	if !slices.Contains(to.DependsOn, from.ID) {
		to.DependsOn = append(to.DependsOn, from.ID)
	}
	return nil
}

// Get returns a pointer to the stored node or nil if it does not exist.
func (g *Graph) Get(id NodeID) *Node {
	return g.nodes[id]
}

// Nodes returns the node ids in input order.
func (g *Graph) Nodes() []NodeID {
	return slices.Clone(g.order)
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Dependencies returns a slice of immediate dependency IDs for the given node.
func (g *Graph) Dependencies(id NodeID) []NodeID {
	if n, ok := g.nodes[id]; ok {
		return slices.Clone(n.DependsOn)
	}
	return nil
}

// Dependents returns the nodes that directly depend on the given node, in
// input order.
func (g *Graph) Dependents(id NodeID) []NodeID {
	var res []NodeID
	for _, nid := range g.order {
		if slices.Contains(g.nodes[nid].DependsOn, id) {
			res = append(res, nid)
		}
	}
	return res
}

// Downstream returns every node reachable from id, in topological order,
// excluding id itself.
func (g *Graph) Downstream(id NodeID) []NodeID {
	reached := make(map[NodeID]bool)
	queue := []NodeID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range g.Dependents(cur) {
			if !reached[dep] && dep != id {
				reached[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	var res []NodeID
	for _, nid := range g.TopologicalOrder() {
		if reached[nid] {
			res = append(res, nid)
		}
	}
	return res
}

// successors returns the consumers of id in edge order.
func (g *Graph) successors(id NodeID) []Edge {
	var res []Edge
	for _, e := range g.edges {
		if e.From == id {
			res = append(res, e)
		}
	}
	return res
}

// Build creates the graph of nodes. Outputs are indexed by path over all
// nodes; each input is linked from every producer of the same path or of a
// directory containing it. It returns an *api.GraphCycleError when the
// result is not acyclic.
func Build(nodes []Node, opts Options) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		if _, exists := g.nodes[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node %s (%s)", n.ID, n.FriendlyName)
		}
		n.DependsOn = nil
		g.AddNode(n)
	}

	if opts.VirtualLinks {
		if err := g.addVirtualLinks(opts.OrderedProducers); err != nil {
			return nil, err
		}
	}
	for _, l := range opts.Links {
		if err := g.AddEdge(Edge{From: l.From, To: l.To}); err != nil {
			return nil, fmt.Errorf("invalid link: %w", err)
		}
	}

	if err := g.CheckForCycles(); err != nil {
		return nil, err
	}
	logging.Debug("Dependency", "Built graph with %d nodes and %d edges", len(g.order), len(g.edges))
	return g, nil
}

type producer struct {
	index int
	node  NodeID
	name  string
}

func (g *Graph) addVirtualLinks(ordered bool) error {
	producers := make(map[string][]producer)
	for i, id := range g.order {
		for _, out := range g.nodes[id].Outputs {
			p := cleanPath(out.Path)
			producers[p] = append(producers[p], producer{index: i, node: id, name: out.Name})
		}
	}

	for i, id := range g.order {
		for _, in := range g.nodes[id].Inputs {
			for _, candidate := range ancestors(cleanPath(in.Path)) {
				for _, p := range producers[candidate] {
					if p.node == id || (ordered && p.index >= i) {
						continue
					}
					if err := g.AddEdge(Edge{From: p.node, To: id, Output: p.name, Input: in.Name, Path: in.Path}); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func cleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// ancestors returns p followed by its parent directories, nearest first.
func ancestors(p string) []string {
	res := []string{p}
	for {
		i := strings.LastIndex(p, "/")
		if i <= 0 {
			return res
		}
		p = p[:i]
		res = append(res, p)
	}
}

const (
	white = iota
	grey
	black
)

// CheckForCycles runs a three-colour depth-first search in input order and
// reports the first cycle found.
func (g *Graph) CheckForCycles() error {
	color := make(map[NodeID]int, len(g.order))
	var stack []Edge

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		color[id] = grey
		for _, e := range g.successors(id) {
			switch color[e.To] {
			case grey:
				return g.cycleError(append(slices.Clone(stack), e))
			case white:
				stack = append(stack, e)
				if err := visit(e.To); err != nil {
					return err
				}
				stack = stack[:len(stack)-1]
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range g.order {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// cycleError renders the cycle closed by the last edge of path.
func (g *Graph) cycleError(path []Edge) error {
	closing := path[len(path)-1]
	start := 0
	for i, e := range path {
		if e.From == closing.To {
			start = i
			break
		}
	}

	cycle := []string{g.nodes[closing.To].FriendlyName}
	for _, e := range path[start:] {
		cycle = append(cycle, e.Description(), g.nodes[e.To].FriendlyName)
	}
	return &api.GraphCycleError{Cycle: cycle}
}

// TopologicalOrder returns the node ids with producers before consumers.
// Unrelated nodes keep their input order.
func (g *Graph) TopologicalOrder() []NodeID {
	visited := make(map[NodeID]bool, len(g.order))
	post := make([]NodeID, 0, len(g.order))

	var visit func(id NodeID)
	visit = func(id NodeID) {
		visited[id] = true
		succ := g.successors(id)
		for i := len(succ) - 1; i >= 0; i-- {
			if !visited[succ[i].To] {
				visit(succ[i].To)
			}
		}
		post = append(post, id)
	}

	for i := len(g.order) - 1; i >= 0; i-- {
		if !visited[g.order[i]] {
			visit(g.order[i])
		}
	}
	slices.Reverse(post)
	return post
}

// SortStable orders ids by their topological position. Unknown ids go last in
// their original order.
func (g *Graph) SortStable(ids []NodeID) []NodeID {
	rank := make(map[NodeID]int, len(g.order))
	for i, id := range g.TopologicalOrder() {
		rank[id] = i
	}
	res := slices.Clone(ids)
	slices.SortStableFunc(res, func(a, b NodeID) int {
		ra, oka := rank[a]
		rb, okb := rank[b]
		switch {
		case oka && okb:
			return ra - rb
		case oka:
			return -1
		case okb:
			return 1
		}
		return 0
	})
	return res
}

// FromPlans flattens composites into their leaf plans and returns one node
// per leaf, in order.
func FromPlans(plans []plan.AbstractPlan) []Node {
	var nodes []Node
	for _, p := range plans {
		for _, leaf := range p.Leaves() {
			n := Node{ID: NodeID(leaf.ID), FriendlyName: leaf.Name, Kind: KindPlan}
			for _, in := range leaf.Inputs {
				n.Inputs = append(n.Inputs, Port{Name: in.Name, Path: in.Path})
			}
			for _, out := range leaf.Outputs {
				n.Outputs = append(n.Outputs, Port{Name: out.Name, Path: out.Path})
			}
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// FromActivities returns one node per activity, ordered by start time.
// Build the result with OrderedProducers so that each usage is linked to
// earlier generations only.
func FromActivities(acts []*activity.Activity) []Node {
	sorted := slices.Clone(acts)
	activity.SortByStart(sorted)

	nodes := make([]Node, 0, len(sorted))
	for _, a := range sorted {
		name := a.PlanName
		if name == "" {
			name = a.PlanID
		}
		n := Node{ID: NodeID(a.ID), FriendlyName: name, Kind: KindActivity}
		for _, u := range a.Usages {
			n.Inputs = append(n.Inputs, Port{Name: u.Name, Path: u.Path})
		}
		for _, gen := range a.Generations {
			n.Outputs = append(n.Outputs, Port{Name: gen.Name, Path: gen.Path})
		}
		nodes = append(nodes, n)
	}
	return nodes
}
