package workflow

import (
	"testing"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/plan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headStep(t *testing.T) *Step {
	t.Helper()
	step := &Step{
		Workflow:        "wf",
		Name:            "head",
		OriginalCommand: "head -n 10 data/collection/models.csv data/collection/colors.csv > intermediate",
		Arguments: plan.Arguments{
			Inputs: []plan.Input{
				{Argument: plan.Argument{Name: "models"}, Path: "data/collection/models.csv"},
				{Argument: plan.Argument{Name: "colors"}, Path: "data/collection/colors.csv"},
			},
			Outputs: []plan.Output{
				{Argument: plan.Argument{Name: "intermediate"}, Path: "intermediate"},
			},
			Parameters: []plan.Parameter{
				{Argument: plan.Argument{Name: "n", Prefix: "-n"}, Value: "10"},
			},
		},
	}
	require.NoError(t, step.Validate())
	return step
}

func positions(args plan.Arguments) map[string]int {
	res := make(map[string]int)
	for _, p := range args.Positionals() {
		res[p.Name] = p.Position
	}
	return res
}

func bind(t *testing.T, step *Step) *BindResult {
	t.Helper()
	require.NoError(t, step.Validate())
	res, err := BindStep(step)
	require.NoError(t, err)
	return res
}

func TestBindStep_HeadExample(t *testing.T) {
	step := headStep(t)
	res, err := BindStep(step)
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, "head", res.Step.Command)
	assert.Equal(t, map[string]int{"n": 1, "models": 2, "colors": 3, "intermediate": 4}, positions(res.Step.Arguments))
	assert.Equal(t, "-n ", res.Step.Parameters[0].Prefix)
	assert.Equal(t, plan.StreamStdout, res.Step.Outputs[0].MappedTo)

	// the input step is left alone
	assert.Zero(t, step.Outputs[0].Position)
	assert.Equal(t, plan.StreamNone, step.Outputs[0].MappedTo)
}

func TestBindStep_Idempotent(t *testing.T) {
	first, err := BindStep(headStep(t))
	require.NoError(t, err)

	again := first.Step.Clone()
	again.OriginalCommand = first.Step.Command
	second, err := BindStep(again)
	require.NoError(t, err)

	assert.Empty(t, second.Warnings)
	assert.Equal(t, first.Step.Command, second.Step.Command)
	assert.Equal(t, first.Step.Arguments, second.Step.Arguments)
}

func TestBindStep_ArgvRoundTrip(t *testing.T) {
	res, err := BindStep(headStep(t))
	require.NoError(t, err)

	p := plan.NewPlan("head", res.Step.Command, res.Step.Arguments)
	argv, redirects, err := p.ToArgv()
	require.NoError(t, err)
	assert.Equal(t, []string{"head", "-n", "10", "data/collection/models.csv", "data/collection/colors.csv"}, argv)
	assert.Equal(t, plan.Redirections{Stdout: "intermediate"}, redirects)
}

func TestBindStep_References(t *testing.T) {
	res := bind(t, &Step{
		Workflow:        "ml",
		Name:            "train",
		OriginalCommand: "python train.py --epochs $epochs $inputs > $model",
		Arguments: plan.Arguments{
			Inputs: []plan.Input{
				{Argument: plan.Argument{Name: "a"}, Path: "a.csv"},
				{Argument: plan.Argument{Name: "b"}, Path: "b.csv"},
			},
			Outputs: []plan.Output{
				{Argument: plan.Argument{Name: "model"}, Path: "model.pkl"},
			},
			Parameters: []plan.Parameter{
				{Argument: plan.Argument{Name: "epochs", Prefix: "--epochs"}, Value: "5"},
			},
		},
	})

	assert.Empty(t, res.Warnings)
	assert.Equal(t, "python train.py", res.Step.Command)
	assert.Equal(t, map[string]int{"epochs": 1, "a": 2, "b": 3, "model": 4}, positions(res.Step.Arguments))
	assert.Equal(t, "--epochs ", res.Step.Parameters[0].Prefix)
	assert.Equal(t, plan.StreamStdout, res.Step.Outputs[0].MappedTo)
}

func TestBindStep_BareValueDropsPrefix(t *testing.T) {
	res := bind(t, &Step{
		Workflow:        "img",
		Name:            "convert",
		OriginalCommand: "convert in.png out.png",
		Arguments: plan.Arguments{
			Inputs:  []plan.Input{{Argument: plan.Argument{Name: "src", Prefix: "-i "}, Path: "in.png"}},
			Outputs: []plan.Output{{Argument: plan.Argument{Name: "dst"}, Path: "out.png"}},
		},
	})

	assert.Empty(t, res.Warnings)
	assert.Equal(t, "convert", res.Step.Command)
	assert.Equal(t, "", res.Step.Inputs[0].Prefix)
	assert.Equal(t, map[string]int{"src": 1, "dst": 2}, positions(res.Step.Arguments))
}

func TestBindStep_UnmatchedTokensBecomeImplicit(t *testing.T) {
	res := bind(t, &Step{
		Workflow:        "wf",
		Name:            "sort",
		OriginalCommand: "sort -r data.csv > sorted.csv",
		Arguments: plan.Arguments{
			Inputs:  []plan.Input{{Argument: plan.Argument{Name: "data"}, Path: "data.csv"}},
			Outputs: []plan.Output{{Argument: plan.Argument{Name: "unused"}, Path: "unused.txt"}},
		},
	})

	assert.Equal(t, "sort", res.Step.Command)
	require.Len(t, res.Step.Parameters, 1)
	assert.Equal(t, "parameter-1", res.Step.Parameters[0].Name)
	assert.Equal(t, "-r", res.Step.Parameters[0].Value)
	assert.True(t, res.Step.Parameters[0].Implicit)

	require.Len(t, res.Step.Outputs, 2)
	implicit := res.Step.Outputs[1]
	assert.Equal(t, "output-1", implicit.Name)
	assert.Equal(t, "sorted.csv", implicit.Path)
	assert.Equal(t, plan.StreamStdout, implicit.MappedTo)
	assert.True(t, implicit.Implicit)

	assert.Equal(t, map[string]int{"parameter-1": 1, "data": 2, "output-1": 3}, positions(res.Step.Arguments))
	assert.Len(t, res.Warnings, 3)
	assert.Contains(t, res.Warnings[len(res.Warnings)-1], `"unused"`)
}

func TestBindStep_FirstWordIsExecutable(t *testing.T) {
	res := bind(t, &Step{
		Workflow:        "wf",
		Name:            "script",
		OriginalCommand: "run.sh data.csv out.txt",
		Arguments: plan.Arguments{
			Inputs: []plan.Input{
				{Argument: plan.Argument{Name: "script"}, Path: "run.sh"},
				{Argument: plan.Argument{Name: "data"}, Path: "data.csv"},
			},
			Outputs: []plan.Output{{Argument: plan.Argument{Name: "out"}, Path: "out.txt"}},
		},
	})

	assert.Equal(t, "run.sh", res.Step.Command)
	assert.Equal(t, map[string]int{"data": 1, "out": 2}, positions(res.Step.Arguments))
	assert.Empty(t, res.Step.Parameters)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `"script"`)
}

func TestBindStep_RepeatedReferenceWarns(t *testing.T) {
	res := bind(t, &Step{
		Workflow:        "wf",
		Name:            "twice",
		OriginalCommand: "tool $d $d",
		Arguments: plan.Arguments{
			Inputs: []plan.Input{{Argument: plan.Argument{Name: "d"}, Path: "d.txt"}},
		},
	})

	assert.Equal(t, "tool", res.Step.Command)
	assert.Equal(t, map[string]int{"d": 1}, positions(res.Step.Arguments))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "referenced more than once")
}

func TestBindStep_Errors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    plan.Arguments
		token   string
	}{
		{
			name:    "unknown reference",
			command: "cat $missing",
			token:   "$missing",
		},
		{
			name:    "aggregate redirect needs a single output",
			command: "gen > $outputs",
			args: plan.Arguments{Outputs: []plan.Output{
				{Argument: plan.Argument{Name: "a"}, Path: "a.txt"},
				{Argument: plan.Argument{Name: "b"}, Path: "b.txt"},
			}},
		},
		{
			name:    "input redirected to stdout",
			command: "gen > $src",
			args:    plan.Arguments{Inputs: []plan.Input{{Argument: plan.Argument{Name: "src"}, Path: "src.txt"}}},
		},
		{
			name:    "stream mapped twice",
			command: "run > other.txt",
			args: plan.Arguments{Outputs: []plan.Output{
				{Argument: plan.Argument{Name: "log"}, Path: "log.txt", MappedTo: plan.StreamStdout},
			}},
		},
		{
			name:    "pipeline",
			command: "a | b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := &Step{Workflow: "wf", Name: "s", OriginalCommand: tt.command, Arguments: tt.args, Line: 7}
			require.NoError(t, step.Validate())

			_, err := BindStep(step)
			require.Error(t, err)
			assert.True(t, api.IsParseError(err))

			var parseErr *api.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "wf.s", parseErr.Step)
			assert.Equal(t, 7, parseErr.Line)
			if tt.token != "" {
				assert.Equal(t, tt.token, parseErr.Token)
			}
		})
	}
}
