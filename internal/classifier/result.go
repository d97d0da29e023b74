package classifier

import (
	"fmt"
	"strings"

	"github.com/giantswarm/lineage/internal/plan"
)

// Paths returns the values of all path arguments in position order.
func (r Result) Paths() []string {
	var paths []string
	for _, arg := range r.Arguments {
		if arg.Kind == KindPath {
			paths = append(paths, arg.Value)
		}
	}
	return paths
}

// MarkOutputs returns a copy of r in which every path argument whose value is
// in paths is an output. Callers pass the paths the command created or
// modified when it ran.
func (r Result) MarkOutputs(paths []string) Result {
	written := make(map[string]bool, len(paths))
	for _, p := range paths {
		written[p] = true
	}

	out := Result{
		BaseCommand: append([]string(nil), r.BaseCommand...),
		Arguments:   append([]Argument(nil), r.Arguments...),
	}
	for i, arg := range out.Arguments {
		if arg.Kind == KindPath && written[arg.Value] && arg.MappedTo != plan.StreamStdin {
			out.Arguments[i].IsOutput = true
		}
	}
	return out
}

// ToPlan builds a random-identity plan named name from the classification.
// Arguments get auto names (input-N, output-N, parameter-N).
func (r Result) ToPlan(name string) *plan.Plan {
	base := make([]string, len(r.BaseCommand))
	for i, word := range r.BaseCommand {
		base[i] = plan.ShellQuote(word)
	}

	var args plan.Arguments
	for _, arg := range r.Arguments {
		common := plan.Argument{Position: arg.Position, Prefix: arg.Prefix}
		switch {
		case arg.Kind == KindParameter:
			common.Name = fmt.Sprintf("parameter-%d", len(args.Parameters)+1)
			args.Parameters = append(args.Parameters, plan.Parameter{
				Argument:  common,
				Value:     arg.Value,
				ValueType: arg.ValueType,
			})
		case arg.IsOutput:
			common.Name = fmt.Sprintf("output-%d", len(args.Outputs)+1)
			args.Outputs = append(args.Outputs, plan.Output{
				Argument:     common,
				Path:         arg.Value,
				MappedTo:     arg.MappedTo,
				CreateFolder: arg.IsDir,
			})
		default:
			common.Name = fmt.Sprintf("input-%d", len(args.Inputs)+1)
			args.Inputs = append(args.Inputs, plan.Input{
				Argument: common,
				Path:     arg.Value,
				MappedTo: arg.MappedTo,
			})
		}
	}

	if name == "" {
		name = strings.Join(r.BaseCommand, "-")
	}
	return plan.NewPlan(name, strings.Join(base, " "), args)
}
