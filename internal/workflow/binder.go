package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/cmdline"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/pkg/logging"
)

// ArgRef points at one argument of a step.
type ArgRef struct {
	Kind  plan.ArgumentKind
	Index int
}

// Binding maps a node of the parsed command to the argument it stands for.
type Binding struct {
	Node int
	Arg  ArgRef
}

// BindResult is the outcome of binding a step.
type BindResult struct {
	// Step is a bound copy of the input step
	Step *Step
	// Command is the parsed original command
	Command  *cmdline.Command
	Warnings []string
	Bindings []Binding
}

// BindStep binds the declared arguments of step to the nodes of its command.
// The step must have passed Validate. The input step is not modified.
func BindStep(step *Step) (*BindResult, error) {
	cmd, err := cmdline.Parse(step.OriginalCommand)
	if err != nil {
		return nil, withStep(err, step)
	}

	b := newBinder(step.Clone(), cmd)
	if err := b.bind(); err != nil {
		return nil, withStep(err, step)
	}
	b.finish()
	if err := checkStreams(b.step); err != nil {
		return nil, withStep(err, step)
	}

	logging.Debug("Binder", "Bound step %s: %d bindings, %d warnings", step.PublicName(), len(b.bindings), len(b.warnings))
	return &BindResult{
		Step:     b.step,
		Command:  cmd,
		Warnings: b.warnings,
		Bindings: b.bindings,
	}, nil
}

func withStep(err error, step *Step) error {
	var parseErr *api.ParseError
	if errors.As(err, &parseErr) {
		parseErr.Step = step.PublicName()
		if parseErr.Attribute == "" {
			parseErr.Attribute = "command"
		}
		if parseErr.Line == 0 {
			parseErr.Line = step.Line
		}
	}
	return err
}

func withFile(err error, path string) error {
	var parseErr *api.ParseError
	if errors.As(err, &parseErr) && parseErr.File == "" {
		parseErr.File = path
	}
	return err
}

// match records where an argument was found.
type match struct {
	node int
	sub  int
}

type binder struct {
	step *Step
	cmd  *cmdline.Command

	baseOpen bool
	base     []string

	consumed  []bool
	matches   map[ArgRef]match
	unmatched []int
	sub       int

	used     map[string]bool
	bindings []Binding
	warnings []string
}

func newBinder(step *Step, cmd *cmdline.Command) *binder {
	used := make(map[string]bool)
	for _, name := range step.Names() {
		used[name] = true
	}
	return &binder{
		step:     step,
		cmd:      cmd,
		baseOpen: true,
		consumed: make([]bool, cmd.Len()),
		matches:  make(map[ArgRef]match),
		used:     used,
	}
}

func (b *binder) bind() error {
	for i := 0; i < b.cmd.Len(); i++ {
		if b.consumed[i] {
			continue
		}
		node := b.cmd.Node(i)

		var err error
		switch node.Kind {
		case cmdline.NodeParameter:
			err = b.bindReference(i, node)
		case cmdline.NodeRedirect:
			err = b.bindRedirect(i, node)
		default:
			b.bindLiteral(i, node)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *binder) bindReference(i int, node cmdline.Node) error {
	b.baseOpen = false

	if node.IsAggregate() {
		kind := aggregateKind(node.Ref)
		bound := 0
		for _, ref := range b.refs(kind) {
			if _, ok := b.matches[ref]; ok {
				continue
			}
			b.record(i, ref)
			bound++
		}
		if bound == 0 {
			b.warn("reference $%s does not match any unbound %s", node.Ref, kind)
		}
		return nil
	}

	ref, ok := b.lookup(node.Ref)
	if !ok {
		return &api.ParseError{
			Attribute: "command",
			Token:     "$" + node.Ref,
			Position:  node.Offset + 1,
			Message:   "unknown argument reference",
		}
	}
	if _, bound := b.matches[ref]; bound {
		b.warn("argument %s is referenced more than once, only its first position is kept", node.Ref)
		b.bindings = append(b.bindings, Binding{Node: i, Arg: ref})
		return nil
	}

	arg := b.argument(ref)
	if node.Value != "" {
		arg.Prefix = node.Value
	} else if prefix := strings.TrimSpace(arg.Prefix); prefix != "" && i > 0 {
		prev := b.cmd.Node(i - 1)
		if prev.Kind == cmdline.NodeWord && !b.consumed[i-1] && prev.Value == prefix && b.isUnmatched(i-1) {
			b.removeUnmatched(i - 1)
			b.consumed[i-1] = true
			arg.Prefix = prefix + " "
			b.record(i-1, ref)
			b.bindings = append(b.bindings, Binding{Node: i, Arg: ref})
			return nil
		}
	}
	b.record(i, ref)
	return nil
}

func (b *binder) bindRedirect(i int, node cmdline.Node) error {
	b.baseOpen = false
	stream := node.Op.Stream()
	kind := plan.KindOutput
	if stream == plan.StreamStdin {
		kind = plan.KindInput
	}
	target := node.Target

	var ref ArgRef
	switch {
	case target.IsAggregate():
		if aggregateKind(target.Ref) != kind {
			return redirectError(node, fmt.Sprintf("$%s cannot be redirected to %s", target.Ref, stream))
		}
		refs := b.refs(kind)
		if len(refs) != 1 {
			return redirectError(node, fmt.Sprintf("redirecting $%s requires exactly one declared %s, found %d", target.Ref, kind, len(refs)))
		}
		ref = refs[0]
	case target.Kind == cmdline.NodeParameter:
		found, ok := b.lookup(target.Ref)
		if !ok {
			return &api.ParseError{
				Attribute: "command",
				Token:     "$" + target.Ref,
				Position:  target.Offset + 1,
				Message:   "unknown argument reference",
			}
		}
		if found.Kind != kind {
			return redirectError(node, fmt.Sprintf("%s %s cannot be redirected to %s", found.Kind, target.Ref, stream))
		}
		ref = found
	default:
		found, ok := b.findPath(kind, target.Value)
		if !ok {
			b.unmatched = append(b.unmatched, i)
			return nil
		}
		ref = found
	}

	if err := b.mapStream(ref, stream, node); err != nil {
		return err
	}
	b.record(i, ref)
	return nil
}

func redirectError(node cmdline.Node, message string) error {
	return &api.ParseError{
		Attribute: "command",
		Token:     node.Raw,
		Position:  node.Offset + 1,
		Message:   message,
	}
}

func (b *binder) mapStream(ref ArgRef, stream plan.Stream, node cmdline.Node) error {
	for _, other := range append(b.refs(plan.KindInput), b.refs(plan.KindOutput)...) {
		if other != ref && b.mappedTo(other) == stream {
			return redirectError(node, fmt.Sprintf("%s is already mapped to %s", stream, b.argument(other).Name))
		}
	}
	b.setStream(ref, stream)
	return nil
}

func (b *binder) bindLiteral(i int, node cmdline.Node) {
	if node.IsFlag() {
		b.baseOpen = false
	}

	// the first word is the executable even when it names a declared path
	if i == 0 && b.baseOpen {
		b.base = append(b.base, node.Value)
		return
	}

	if ref, width, ok := b.matchLiteral(i); ok {
		b.baseOpen = false
		b.record(i, ref)
		for j := 1; j < width; j++ {
			b.consumed[i+j] = true
			b.bindings = append(b.bindings, Binding{Node: i + j, Arg: ref})
		}
		return
	}

	if b.baseOpen {
		b.base = append(b.base, node.Value)
		return
	}
	b.unmatched = append(b.unmatched, i)
}

// matchLiteral tries the unbound parameters, inputs and outputs in that order
// and returns the matched argument and the number of words it spans.
func (b *binder) matchLiteral(i int) (ArgRef, int, bool) {
	kinds := []plan.ArgumentKind{plan.KindParameter, plan.KindInput}
	if len(b.base) > 0 {
		kinds = append(kinds, plan.KindOutput)
	}

	for _, kind := range kinds {
		for _, ref := range b.refs(kind) {
			if _, bound := b.matches[ref]; bound {
				continue
			}
			if width, ok := b.tryMatch(i, ref); ok {
				return ref, width, true
			}
		}
	}
	return ArgRef{}, 0, false
}

func (b *binder) tryMatch(i int, ref ArgRef) (int, bool) {
	arg := b.argument(ref)
	value := b.value(ref)
	word := b.cmd.Node(i).Value
	prefix := arg.Prefix
	trimmed := strings.TrimSpace(prefix)

	// exact prefixed match, one word or two
	if word == prefix+value {
		return 1, true
	}
	if trimmed != "" && word == trimmed && b.literalAt(i+1) && b.cmd.Node(i+1).Value == value {
		arg.Prefix = trimmed + " "
		return 2, true
	}

	// bare value while the base command is still open
	if b.baseOpen && prefix != "" && word == value {
		arg.Prefix = ""
		return 1, true
	}

	// whitespace-normalised match over consecutive words
	want := normalize(prefix + value)
	bare := normalize(value)
	var words []string
	for j := i; b.literalAt(j); j++ {
		words = append(words, b.cmd.Node(j).Value)
		got := normalize(strings.Join(words, " "))
		if got == want {
			return len(words), true
		}
		if got == bare {
			arg.Prefix = ""
			return len(words), true
		}
		if len(got) > len(want) && len(got) > len(bare) {
			break
		}
	}
	return 0, false
}

func (b *binder) literalAt(j int) bool {
	if j >= b.cmd.Len() || b.consumed[j] {
		return false
	}
	k := b.cmd.Node(j).Kind
	return k == cmdline.NodeWord || k == cmdline.NodeTilde
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (b *binder) findPath(kind plan.ArgumentKind, path string) (ArgRef, bool) {
	for _, ref := range b.refs(kind) {
		if _, bound := b.matches[ref]; bound {
			continue
		}
		if b.value(ref) == path {
			return ref, true
		}
	}
	return ArgRef{}, false
}

func (b *binder) record(node int, ref ArgRef) {
	if _, ok := b.matches[ref]; !ok {
		b.matches[ref] = match{node: node, sub: b.sub}
		b.sub++
	}
	b.bindings = append(b.bindings, Binding{Node: node, Arg: ref})
}

func (b *binder) isUnmatched(i int) bool {
	for _, u := range b.unmatched {
		if u == i {
			return true
		}
	}
	return false
}

func (b *binder) removeUnmatched(i int) {
	for k, u := range b.unmatched {
		if u == i {
			b.unmatched = append(b.unmatched[:k], b.unmatched[k+1:]...)
			return
		}
	}
}

// finish turns leftovers into implicit arguments and warnings, renumbers
// positions and rewrites the command.
func (b *binder) finish() {
	for _, i := range b.unmatched {
		node := b.cmd.Node(i)
		if node.Kind == cmdline.NodeRedirect {
			b.addImplicitPath(i, node)
			continue
		}
		b.addImplicitParameter(i, node)
	}

	type positioned struct {
		ref   ArgRef
		found bool
		key   match
		old   int
		decl  int
	}
	var order []positioned
	for decl, ref := range b.allRefs() {
		arg := b.argument(ref)
		if m, ok := b.matches[ref]; ok {
			order = append(order, positioned{ref: ref, found: true, key: m, decl: decl})
			continue
		}
		if arg.Position > 0 || b.mappedTo(ref) != plan.StreamNone {
			order = append(order, positioned{ref: ref, old: arg.Position, decl: decl})
			continue
		}
		if !arg.Implicit {
			b.warn("%s %q is declared but not used in the command", ref.Kind, arg.Name)
		}
	}

	sort.SliceStable(order, func(x, y int) bool {
		a, c := order[x], order[y]
		if a.found != c.found {
			return a.found
		}
		if a.found {
			if a.key.node != c.key.node {
				return a.key.node < c.key.node
			}
			return a.key.sub < c.key.sub
		}
		// unpositioned streams go last
		if (a.old == 0) != (c.old == 0) {
			return c.old == 0
		}
		if a.old != c.old {
			return a.old < c.old
		}
		return a.decl < c.decl
	})

	for _, ref := range b.allRefs() {
		b.argument(ref).Position = 0
	}
	for pos, p := range order {
		b.argument(p.ref).Position = pos + 1
	}

	words := make([]string, len(b.base))
	for i, w := range b.base {
		words[i] = plan.ShellQuote(w)
	}
	b.step.Command = strings.Join(words, " ")

	sort.SliceStable(b.bindings, func(x, y int) bool { return b.bindings[x].Node < b.bindings[y].Node })
}

func (b *binder) addImplicitParameter(i int, node cmdline.Node) {
	name := autoName(plan.KindParameter, b.used)
	b.step.Parameters = append(b.step.Parameters, plan.Parameter{
		Argument:  plan.Argument{Name: name, Implicit: true},
		Value:     node.Value,
		ValueType: plan.GuessValueType(node.Value),
	})
	ref := ArgRef{Kind: plan.KindParameter, Index: len(b.step.Parameters) - 1}
	b.matches[ref] = match{node: i}
	b.bindings = append(b.bindings, Binding{Node: i, Arg: ref})
	b.warn("command token %q does not match any declared argument, added implicit parameter %q", node.Value, name)
}

func (b *binder) addImplicitPath(i int, node cmdline.Node) {
	stream := node.Op.Stream()
	var ref ArgRef
	var name string
	if stream == plan.StreamStdin {
		name = autoName(plan.KindInput, b.used)
		b.step.Inputs = append(b.step.Inputs, plan.Input{
			Argument: plan.Argument{Name: name, Implicit: true},
			Path:     node.Target.Value,
		})
		ref = ArgRef{Kind: plan.KindInput, Index: len(b.step.Inputs) - 1}
	} else {
		name = autoName(plan.KindOutput, b.used)
		b.step.Outputs = append(b.step.Outputs, plan.Output{
			Argument: plan.Argument{Name: name, Implicit: true},
			Path:     node.Target.Value,
		})
		ref = ArgRef{Kind: plan.KindOutput, Index: len(b.step.Outputs) - 1}
	}
	b.setStream(ref, stream)
	b.matches[ref] = match{node: i}
	b.bindings = append(b.bindings, Binding{Node: i, Arg: ref})
	b.warn("redirection target %q does not match any declared %s, added implicit %s %q", node.Target.Value, ref.Kind, ref.Kind, name)
}

func (b *binder) warn(format string, args ...interface{}) {
	b.warnings = append(b.warnings, fmt.Sprintf("%s: %s", b.step.PublicName(), fmt.Sprintf(format, args...)))
}

func (b *binder) refs(kind plan.ArgumentKind) []ArgRef {
	var n int
	switch kind {
	case plan.KindInput:
		n = len(b.step.Inputs)
	case plan.KindOutput:
		n = len(b.step.Outputs)
	case plan.KindParameter:
		n = len(b.step.Parameters)
	}
	refs := make([]ArgRef, n)
	for i := range refs {
		refs[i] = ArgRef{Kind: kind, Index: i}
	}
	return refs
}

func (b *binder) allRefs() []ArgRef {
	refs := b.refs(plan.KindParameter)
	refs = append(refs, b.refs(plan.KindInput)...)
	return append(refs, b.refs(plan.KindOutput)...)
}

func (b *binder) lookup(name string) (ArgRef, bool) {
	for _, ref := range b.allRefs() {
		if b.argument(ref).Name == name {
			return ref, true
		}
	}
	return ArgRef{}, false
}

func (b *binder) argument(ref ArgRef) *plan.Argument {
	switch ref.Kind {
	case plan.KindInput:
		return &b.step.Inputs[ref.Index].Argument
	case plan.KindOutput:
		return &b.step.Outputs[ref.Index].Argument
	default:
		return &b.step.Parameters[ref.Index].Argument
	}
}

func (b *binder) value(ref ArgRef) string {
	switch ref.Kind {
	case plan.KindInput:
		return b.step.Inputs[ref.Index].Path
	case plan.KindOutput:
		return b.step.Outputs[ref.Index].Path
	default:
		return b.step.Parameters[ref.Index].Value
	}
}

func (b *binder) mappedTo(ref ArgRef) plan.Stream {
	switch ref.Kind {
	case plan.KindInput:
		return b.step.Inputs[ref.Index].MappedTo
	case plan.KindOutput:
		return b.step.Outputs[ref.Index].MappedTo
	}
	return plan.StreamNone
}

func (b *binder) setStream(ref ArgRef, stream plan.Stream) {
	switch ref.Kind {
	case plan.KindInput:
		b.step.Inputs[ref.Index].MappedTo = stream
	case plan.KindOutput:
		b.step.Outputs[ref.Index].MappedTo = stream
	}
}

func aggregateKind(name string) plan.ArgumentKind {
	switch name {
	case cmdline.AggregateInputs:
		return plan.KindInput
	case cmdline.AggregateOutputs:
		return plan.KindOutput
	default:
		return plan.KindParameter
	}
}
