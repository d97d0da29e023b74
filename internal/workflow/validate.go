package workflow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/config"
	"github.com/giantswarm/lineage/internal/plan"
)

// Validate checks the structure of a parsed file and assigns auto names to
// unnamed arguments. It returns an *api.ParseError naming the offending step
// and attribute.
func (f *File) Validate() error {
	fail := func(attribute, token, message string) error {
		return &api.ParseError{File: f.Path, Attribute: attribute, Token: token, Message: message}
	}

	if err := config.ValidateEntityName(f.Name, "workflow"); err != nil {
		return fail("name", f.Name, validationMessage(err))
	}
	if len(f.Steps) == 0 {
		return fail("steps", "", "must contain at least one step")
	}

	seen := make(map[string]bool, len(f.Steps))
	for _, step := range f.Steps {
		step.Workflow = f.Name
		if err := config.ValidateEntityName(step.Name, "step"); err != nil {
			return fail("steps", step.Name, "invalid step name: "+validationMessage(err))
		}
		if step.Name == f.Name {
			return fail("steps", step.Name, "step name must differ from the workflow name")
		}
		if seen[step.Name] {
			return fail("steps", step.Name, "duplicate step name")
		}
		seen[step.Name] = true

		if err := step.Validate(); err != nil {
			var parseErr *api.ParseError
			if errors.As(err, &parseErr) {
				parseErr.File = f.Path
				if parseErr.Line == 0 {
					parseErr.Line = step.Line
				}
			}
			return err
		}
	}
	return nil
}

// Validate checks one step and names its unnamed arguments.
func (s *Step) Validate() error {
	fail := func(attribute, token, message string) error {
		return &api.ParseError{Step: s.PublicName(), Attribute: attribute, Token: token, Message: message, Line: s.Line}
	}

	if s.OriginalCommand == "" {
		s.OriginalCommand = s.Command
	}
	if s.OriginalCommand == "" {
		return fail("command", "", "is required")
	}
	if len(s.SuccessCodes) == 0 {
		s.SuccessCodes = slices.Clone(plan.DefaultSuccessCodes)
	}

	used := make(map[string]bool)
	for _, name := range s.Names() {
		if name == "" {
			continue
		}
		if slices.Contains(reservedNames, name) {
			return fail("name", name, "argument name is reserved")
		}
		if used[name] {
			return fail("name", name, "duplicate argument name")
		}
		if err := config.ValidateEntityName(name, "argument"); err != nil {
			return fail("name", name, "invalid argument name: "+validationMessage(err))
		}
		used[name] = true
	}

	for i := range s.Inputs {
		in := &s.Inputs[i]
		if in.Name == "" {
			in.Name = autoName(plan.KindInput, used)
		}
		if in.Path == "" {
			return fail("inputs", in.Name, "path is required")
		}
		if in.MappedTo != plan.StreamNone && in.MappedTo != plan.StreamStdin {
			return fail("inputs", in.Name, fmt.Sprintf("inputs can only be mapped to stdin, not %s", in.MappedTo))
		}
	}
	for i := range s.Outputs {
		out := &s.Outputs[i]
		if out.Name == "" {
			out.Name = autoName(plan.KindOutput, used)
		}
		if out.Path == "" {
			return fail("outputs", out.Name, "path is required")
		}
		if out.MappedTo == plan.StreamStdin {
			return fail("outputs", out.Name, "outputs can only be mapped to stdout or stderr")
		}
	}
	for i := range s.Parameters {
		p := &s.Parameters[i]
		if p.Name == "" {
			p.Name = autoName(plan.KindParameter, used)
		}
		if p.Value == "" {
			return fail("parameters", p.Name, "value is required")
		}
		if p.ValueType == "" {
			p.ValueType = plan.GuessValueType(p.Value)
		}
	}

	return checkStreams(s)
}

// checkStreams rejects two arguments mapped to the same stream.
func checkStreams(s *Step) error {
	owners := make(map[plan.Stream]string)
	claim := func(stream plan.Stream, name string) error {
		if stream == plan.StreamNone {
			return nil
		}
		if other, ok := owners[stream]; ok && other != name {
			return &api.ParseError{
				Step:      s.PublicName(),
				Attribute: "mapped_to",
				Token:     name,
				Line:      s.Line,
				Message:   fmt.Sprintf("%s is already mapped to %s", stream, other),
			}
		}
		owners[stream] = name
		return nil
	}

	for _, in := range s.Inputs {
		if err := claim(in.MappedTo, in.Name); err != nil {
			return err
		}
	}
	for _, out := range s.Outputs {
		if err := claim(out.MappedTo, out.Name); err != nil {
			return err
		}
	}
	return nil
}

// autoName returns the first free <kind>-N name and marks it used.
func autoName(kind plan.ArgumentKind, used map[string]bool) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s-%d", kind, n)
		if !used[name] {
			used[name] = true
			return name
		}
	}
}

func validationMessage(err error) string {
	var ve config.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
