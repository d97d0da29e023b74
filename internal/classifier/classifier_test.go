package classifier

import (
	"testing"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/plan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pathSet is a PathChecker over a fixed set of paths; entries ending in '/'
// are directories.
func pathSet(paths ...string) api.PathChecker {
	known := make(map[string]api.PathInfo)
	for _, p := range paths {
		if len(p) > 1 && p[len(p)-1] == '/' {
			known[p[:len(p)-1]] = api.PathInfo{IsDir: true}
			continue
		}
		known[p] = api.PathInfo{}
	}
	return api.PathCheckerFunc(func(candidate string) (api.PathInfo, bool) {
		info, ok := known[candidate]
		return info, ok
	})
}

func TestClassify_HeadExample(t *testing.T) {
	tokens := []string{"head", "-n", "10", "data/collection/models.csv", "data/collection/colors.csv", ">", "intermediate"}
	checker := pathSet("data/collection/models.csv", "data/collection/colors.csv")

	res := Classify(tokens, checker, Options{})

	assert.Equal(t, []string{"head"}, res.BaseCommand)
	assert.Equal(t, []Argument{
		{Kind: KindParameter, Value: "10", Prefix: "-n ", Position: 1, ValueType: plan.ValueInt},
		{Kind: KindPath, Value: "data/collection/models.csv", Position: 2},
		{Kind: KindPath, Value: "data/collection/colors.csv", Position: 3},
		{Kind: KindPath, Value: "intermediate", Position: 4, MappedTo: plan.StreamStdout, IsOutput: true},
	}, res.Arguments)
}

func TestClassify_Prefixes(t *testing.T) {
	checker := pathSet("in.csv", "out/")

	tests := []struct {
		name     string
		tokens   []string
		expected []Argument
	}{
		{
			name:   "long flag with separate value",
			tokens: []string{"tool", "--input", "in.csv"},
			expected: []Argument{
				{Kind: KindPath, Value: "in.csv", Prefix: "--input ", Position: 1},
			},
		},
		{
			name:   "long flag with equals",
			tokens: []string{"tool", "--input=in.csv"},
			expected: []Argument{
				{Kind: KindPath, Value: "in.csv", Prefix: "--input=", Position: 1},
			},
		},
		{
			name:   "short flag with equals",
			tokens: []string{"tool", "-k=v"},
			expected: []Argument{
				{Kind: KindParameter, Value: "v", Prefix: "-k=", Position: 1, ValueType: plan.ValueString},
			},
		},
		{
			name:   "short flag with attached value",
			tokens: []string{"tool", "-i42"},
			expected: []Argument{
				{Kind: KindParameter, Value: "42", Prefix: "-i", Position: 1, ValueType: plan.ValueInt},
			},
		},
		{
			name:   "lone flags become parameters",
			tokens: []string{"tool", "--verbose", "--out", "out", "-q"},
			expected: []Argument{
				{Kind: KindParameter, Value: "--verbose", Position: 1, ValueType: plan.ValueString},
				{Kind: KindPath, Value: "out", Prefix: "--out ", Position: 2, IsDir: true},
				{Kind: KindParameter, Value: "-q", Position: 3, ValueType: plan.ValueString},
			},
		},
		{
			name:   "negative number is a value",
			tokens: []string{"tool", "--offset", "-3"},
			expected: []Argument{
				{Kind: KindParameter, Value: "-3", Prefix: "--offset ", Position: 1, ValueType: plan.ValueInt},
			},
		},
		{
			name:   "flag before redirect is flushed",
			tokens: []string{"tool", "--dry", ">", "log.txt"},
			expected: []Argument{
				{Kind: KindParameter, Value: "--dry", Position: 1, ValueType: plan.ValueString},
				{Kind: KindPath, Value: "log.txt", Position: 2, MappedTo: plan.StreamStdout, IsOutput: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.tokens, checker, Options{})
			assert.Equal(t, tt.expected, res.Arguments)
		})
	}
}

func TestClassify_Redirects(t *testing.T) {
	checker := pathSet("in.txt")

	res := Classify([]string{"sort", "<in.txt", ">>sorted.txt", "2>", "err.log"}, checker, Options{})

	assert.Equal(t, []string{"sort"}, res.BaseCommand)
	require.Len(t, res.Arguments, 3)
	assert.Equal(t, Argument{Kind: KindPath, Value: "in.txt", Position: 1, MappedTo: plan.StreamStdin}, res.Arguments[0])
	assert.Equal(t, Argument{Kind: KindPath, Value: "sorted.txt", Position: 2, MappedTo: plan.StreamStdout, IsOutput: true}, res.Arguments[1])
	assert.Equal(t, Argument{Kind: KindPath, Value: "err.log", Position: 3, MappedTo: plan.StreamStderr, IsOutput: true}, res.Arguments[2])
}

func TestClassify_Subcommands(t *testing.T) {
	checker := pathSet("README.md", "status")

	tests := []struct {
		name   string
		tokens []string
		base   []string
	}{
		{name: "git commit", tokens: []string{"git", "commit", "-m", "msg"}, base: []string{"git", "commit"}},
		{name: "dash joined", tokens: []string{"tool", "run-all", "now", "README.md"}, base: []string{"tool", "run-all", "now"}},
		{name: "single argument is never folded", tokens: []string{"echo", "hello"}, base: []string{"echo"}},
		{name: "paths stop folding", tokens: []string{"cat", "README.md", "extra"}, base: []string{"cat"}},
		{name: "existing path that looks like a word", tokens: []string{"git", "status", "x"}, base: []string{"git"}},
		{name: "flags stop folding", tokens: []string{"ls", "-la", "dir"}, base: []string{"ls"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.tokens, checker, Options{})
			assert.Equal(t, tt.base, res.BaseCommand)
		})
	}
}

func TestClassify_ExplicitParameters(t *testing.T) {
	checker := pathSet("config", "data.csv")

	res := Classify([]string{"tool", "--mode", "config", "data.csv"}, checker, Options{ExplicitParameters: []string{"config"}})

	require.Len(t, res.Arguments, 2)
	assert.Equal(t, KindParameter, res.Arguments[0].Kind)
	assert.Equal(t, "config", res.Arguments[0].Value)
	assert.Equal(t, KindPath, res.Arguments[1].Kind)
}

func TestClassify_Total(t *testing.T) {
	assert.Equal(t, Result{}, Classify(nil, nil, Options{}))

	res := Classify([]string{"x", ">", ">", "<"}, nil, Options{})
	assert.Equal(t, []string{"x"}, res.BaseCommand)
	for i, arg := range res.Arguments {
		assert.Equal(t, i+1, arg.Position)
	}

	res = Classify([]string{"cmd", "a", "b", "--"}, nil, Options{})
	assert.NotEmpty(t, res.BaseCommand)
}

func TestSplit(t *testing.T) {
	tokens, err := Split(`python "train model.py" --lr 0.1 > out.txt`)
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "train model.py", "--lr", "0.1", ">", "out.txt"}, tokens)

	_, err = Split(`echo "open`)
	assert.Error(t, err)
}

func TestResult_ToPlan(t *testing.T) {
	checker := pathSet("data.csv", "model.pkl")
	res := Classify([]string{"python", "train.py", "--data", "data.csv", "--epochs", "5", "--save", "model.pkl"}, checker, Options{})
	res = res.MarkOutputs([]string{"model.pkl"})

	p := res.ToPlan("train")

	assert.Equal(t, plan.KindPlan, p.Kind)
	assert.Equal(t, "python", p.Command)
	require.Len(t, p.Inputs, 1)
	assert.Equal(t, "input-1", p.Inputs[0].Name)
	assert.Equal(t, "--data ", p.Inputs[0].Prefix)
	require.Len(t, p.Parameters, 2, "train.py does not exist in the checker")
	require.Len(t, p.Outputs, 1)
	assert.Equal(t, "output-1", p.Outputs[0].Name)
	assert.Equal(t, "model.pkl", p.Outputs[0].Path)
	assert.Equal(t, "--save ", p.Outputs[0].Prefix)

	argv, _, err := p.ToArgv()
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "train.py", "--data", "data.csv", "--epochs", "5", "--save", "model.pkl"}, argv)
}
