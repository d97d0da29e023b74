package cmdline

import (
	"slices"

	"github.com/giantswarm/lineage/internal/plan"
)

// NodeKind is the kind of a syntax tree node.
type NodeKind int

const (
	// NodeWord is a literal word with quoting removed
	NodeWord NodeKind = iota
	// NodeParameter is a `$name` or `${name}` reference, optionally preceded
	// by literal text in the same word (`--out=$output`)
	NodeParameter
	// NodeTilde is an unquoted word starting with `~`
	NodeTilde
	// NodeRedirect is a redirection operator with its target word
	NodeRedirect
)

func (k NodeKind) String() string {
	switch k {
	case NodeWord:
		return "word"
	case NodeParameter:
		return "parameter"
	case NodeTilde:
		return "tilde"
	case NodeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// RedirectOp is a supported redirection operator.
type RedirectOp string

const (
	RedirectIn     RedirectOp = "<"
	RedirectOut    RedirectOp = ">"
	RedirectAppend RedirectOp = ">>"
	RedirectErr    RedirectOp = "2>"
)

// Stream returns the standard stream the operator redirects.
func (op RedirectOp) Stream() plan.Stream {
	switch op {
	case RedirectIn:
		return plan.StreamStdin
	case RedirectOut, RedirectAppend:
		return plan.StreamStdout
	case RedirectErr:
		return plan.StreamStderr
	default:
		return plan.StreamNone
	}
}

// Aggregate reference names.
const (
	AggregateInputs     = "inputs"
	AggregateOutputs    = "outputs"
	AggregateParameters = "parameters"
)

// Node is one element of a parsed command.
type Node struct {
	Kind NodeKind
	// Value is the unquoted text of a word or tilde word. For a parameter
	// node it is the literal text before the reference.
	Value string
	// Ref is the referenced name of a parameter node
	Ref string
	// Op and Target are set on redirect nodes
	Op     RedirectOp
	Target *Node
	// Offset is the byte offset of the node in the source
	Offset int
	// Raw is the source text of the node
	Raw string
}

// IsAggregate reports whether the node references $inputs, $outputs or $parameters.
func (n Node) IsAggregate() bool {
	return n.Kind == NodeParameter &&
		(n.Ref == AggregateInputs || n.Ref == AggregateOutputs || n.Ref == AggregateParameters)
}

// IsFlag reports whether the node is a literal word that looks like an option.
func (n Node) IsFlag() bool {
	return n.Kind == NodeWord && len(n.Value) > 1 && n.Value[0] == '-'
}

// Command is a parsed command line.
type Command struct {
	source string
	nodes  []Node
}

// Source returns the text the command was parsed from.
func (c *Command) Source() string { return c.source }

// Len returns the number of top-level nodes.
func (c *Command) Len() int { return len(c.nodes) }

// Node returns the top-level node at index i.
func (c *Command) Node(i int) Node { return c.nodes[i] }

// Nodes returns a copy of the top-level nodes.
func (c *Command) Nodes() []Node { return slices.Clone(c.nodes) }
