package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/formatting"
)

const copyWorkflow = `name: pipeline
steps:
  - copy:
      command: cp in.txt mid.txt
      inputs:
        - src: in.txt
      outputs:
        - dst: mid.txt
  - again:
      command: cp mid.txt out.txt
      inputs:
        - src: mid.txt
      outputs:
        - dst: out.txt
`

const cycleWorkflow = `name: loop
steps:
  - a:
      command: cp x y
      inputs: [{x: x}]
      outputs: [{y: y}]
  - b:
      command: cp y x
      inputs: [{y: y}]
      outputs: [{x: x}]
`

// newProject creates a project directory with the given files and makes it
// the working directory of the test.
func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func resetFlags() {
	rootConfigPath = ""
	rootLogLevel = ""
	rootOutputFormat = "table"
	rootQuiet = false
	classifyExplicitParams = nil
	classifyRecord = false
	classifyName = ""
	classifyWrites = nil
	workflowDryRun = false
	graphNoVirtualLinks = false
	graphHistory = false
	runProvider = ""
	runTimeout = 0
	statusWatch = false
	planShowScript = false
	planListAll = false
	activitiesLimit = 0
}

// execute runs the root command with args and returns what it wrote to
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeWithStderr(t, args...)
	return stdout, err
}

func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestWorkflowValidate(t *testing.T) {
	newProject(t, map[string]string{"pipeline.yaml": copyWorkflow, "in.txt": "hello\n"})

	out, err := execute(t, "workflow", "validate", "-o", "json", "pipeline.yaml")
	require.NoError(t, err)

	var composite struct {
		Kind  string            `json:"kind"`
		Plans []json.RawMessage `json:"plans"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &composite))
	assert.Len(t, composite.Plans, 2)
}

func TestWorkflowValidate_ParseError(t *testing.T) {
	newProject(t, map[string]string{"broken.yaml": "name: broken\nsteps:\n  - s:\n      command: cat $nope\n"})

	_, err := execute(t, "workflow", "validate", "broken.yaml")
	require.Error(t, err)
	assert.True(t, api.IsParseError(err))
	assert.Equal(t, ExitCodeParseError, getExitCode(err))
}

func TestWorkflowPlan(t *testing.T) {
	newProject(t, map[string]string{"pipeline.yaml": copyWorkflow, "in.txt": "hello\n"})

	decide := func(args ...string) []formatting.Decision {
		out, err := execute(t, append([]string{"workflow", "plan", "-o", "json"}, args...)...)
		require.NoError(t, err)
		var decisions []formatting.Decision
		require.NoError(t, json.Unmarshal([]byte(out), &decisions))
		return decisions
	}

	dry := decide("--dry-run", "pipeline.yaml")
	require.Len(t, dry, 3)
	for _, d := range dry {
		assert.Equal(t, formatting.ActionNew, d.Action, d.Name)
	}

	first := decide("pipeline.yaml")
	require.Len(t, first, 3)
	for _, d := range first {
		assert.Equal(t, formatting.ActionNew, d.Action, d.Name)
	}

	second := decide("pipeline.yaml")
	require.Len(t, second, 3)
	for i, d := range second {
		assert.Equal(t, formatting.ActionReused, d.Action, d.Name)
		assert.Equal(t, first[i].ID, d.ID)
	}
}

func TestGraph(t *testing.T) {
	newProject(t, map[string]string{"pipeline.yaml": copyWorkflow})

	out, err := execute(t, "graph", "-o", "json", "pipeline.yaml")
	require.NoError(t, err)

	var view formatting.GraphView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Order, 2)
	assert.Empty(t, view.Order[0].DependsOn)
	assert.Len(t, view.Order[1].DependsOn, 1)
	require.Len(t, view.Edges, 1)
	assert.Equal(t, "mid.txt", view.Edges[0].Path)
}

func TestGraph_Cycle(t *testing.T) {
	newProject(t, map[string]string{"loop.yaml": cycleWorkflow})

	_, err := execute(t, "graph", "loop.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCodeGraphCycle, getExitCode(err))
}

func TestGraph_RequiresFiles(t *testing.T) {
	newProject(t, nil)

	_, err := execute(t, "graph")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	newProject(t, map[string]string{"data.csv": "a,b\n"})

	out, err := execute(t, "classify", "-o", "json", "--", "sort", "-r", "data.csv")
	require.NoError(t, err)

	var res struct {
		BaseCommand []string `json:"baseCommand"`
		Arguments   []struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
		} `json:"arguments"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"sort"}, res.BaseCommand)

	values := make(map[string]string)
	for _, a := range res.Arguments {
		values[a.Value] = a.Kind
	}
	assert.Contains(t, values, "data.csv")
}

func TestClassify_Record(t *testing.T) {
	newProject(t, map[string]string{"data.csv": "a,b\n", "top.csv": ""})

	record := func(args ...string) formatting.Decision {
		t.Helper()
		out, err := execute(t, append([]string{"classify", "--record", "--name", "top", "-o", "json"}, args...)...)
		require.NoError(t, err)
		var decisions []formatting.Decision
		require.NoError(t, json.Unmarshal([]byte(out), &decisions))
		require.Len(t, decisions, 1)
		return decisions[0]
	}

	first := record("--", "head", "-n", "5", "data.csv")
	assert.Equal(t, formatting.ActionNew, first.Action)
	assert.Equal(t, "top", first.Name)
	assert.Empty(t, first.DerivedFrom)

	again := record("--", "head", "-n", "5", "data.csv")
	assert.Equal(t, formatting.ActionReused, again.Action)
	assert.Equal(t, first.ID, again.ID)

	changed := record("--", "head", "-n", "10", "data.csv")
	assert.Equal(t, formatting.ActionNewVersion, changed.Action)
	assert.NotEqual(t, first.ID, changed.ID)
	assert.Equal(t, first.ID, changed.DerivedFrom)

	out, err := execute(t, "plan", "show", "-o", "json", "top")
	require.NoError(t, err)
	assert.Contains(t, out, changed.ID)

	written := record("--writes", "top.csv", "--", "cp", "data.csv", "top.csv")
	assert.Equal(t, formatting.ActionNewVersion, written.Action)
	out, err = execute(t, "plan", "show", "-o", "json", written.ID)
	require.NoError(t, err)
	var shown struct {
		Outputs []struct {
			Path string `json:"path"`
		} `json:"outputs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	require.Len(t, shown.Outputs, 1)
	assert.Equal(t, "top.csv", shown.Outputs[0].Path)
}

func TestClassify_WithoutRecordStoresNothing(t *testing.T) {
	newProject(t, map[string]string{"data.csv": "a,b\n"})

	_, err := execute(t, "classify", "--", "head", "-n", "5", "data.csv")
	require.NoError(t, err)

	out, err := execute(t, "plan", "list", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestConfigErrorDetails(t *testing.T) {
	newProject(t, map[string]string{".lineage/config.yaml": "provider: [local\n"})

	_, stderr, err := executeWithStderr(t, "plan", "list")
	require.Error(t, err)
	assert.Contains(t, stderr, "Configuration Error in config.yaml")
	assert.Contains(t, stderr, "Type: parse")
	assert.Contains(t, stderr, "Check the YAML syntax of config.yaml")
}

func TestRunAndStatus(t *testing.T) {
	dir := newProject(t, map[string]string{"pipeline.yaml": copyWorkflow, "in.txt": "hello\n"})

	out, err := execute(t, "run", "-q", "-o", "json", "pipeline.yaml")
	require.NoError(t, err)

	var acts []struct {
		ID       string `json:"id"`
		PlanName string `json:"planName"`
		ExitCode int    `json:"exitCode"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &acts))
	require.Len(t, acts, 2)
	for _, a := range acts {
		assert.Equal(t, 0, a.ExitCode)
	}

	content, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))

	out, err = execute(t, "activities", "-o", "json")
	require.NoError(t, err)
	var listed []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed, 2)

	out, err = execute(t, "status", "-o", "json")
	require.NoError(t, err)
	var report struct {
		OutdatedOutputs map[string][]string `json:"outdatedOutputs"`
		ModifiedInputs  []string            `json:"modifiedInputs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Empty(t, report.OutdatedOutputs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "in.txt"), []byte("changed\n"), 0o644))

	out, err = execute(t, "status", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Contains(t, report.ModifiedInputs, "in.txt")
	assert.Contains(t, report.OutdatedOutputs, "mid.txt")
	assert.Contains(t, report.OutdatedOutputs, "out.txt")
}

func TestRun_Script(t *testing.T) {
	dir := newProject(t, map[string]string{"pipeline.yaml": copyWorkflow, "in.txt": "hello\n"})

	out, err := execute(t, "run", "--provider", "script", "pipeline.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "#!/usr/bin/env bash")
	assert.Contains(t, out, "cp in.txt mid.txt")
	assert.Contains(t, out, "cp mid.txt out.txt")

	assert.NoFileExists(t, filepath.Join(dir, "mid.txt"))
}

func TestRun_UnknownProvider(t *testing.T) {
	newProject(t, map[string]string{"pipeline.yaml": copyWorkflow})

	_, err := execute(t, "run", "--provider", "cloud", "pipeline.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported execution backend")
}

func TestPlanCommands(t *testing.T) {
	newProject(t, map[string]string{"pipeline.yaml": copyWorkflow})

	_, err := execute(t, "workflow", "plan", "pipeline.yaml")
	require.NoError(t, err)

	out, err := execute(t, "plan", "list", "-o", "json")
	require.NoError(t, err)
	var listed []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 3)

	var target struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	for _, p := range listed {
		if p.Name == "pipeline.copy" {
			target = p
		}
	}
	require.NotEmpty(t, target.ID)
	out, err = execute(t, "plan", "show", "-o", "json", target.ID)
	require.NoError(t, err)
	assert.Contains(t, out, target.ID)

	_, err = execute(t, "plan", "remove", "-q", target.Name)
	require.NoError(t, err)

	out, err = execute(t, "plan", "list", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed, 2)

	_, err = execute(t, "plan", "remove", target.Name)
	assert.Error(t, err)

	out, err = execute(t, "plan", "list", "--all", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed, 4)
}

func TestPlanShow_NotFound(t *testing.T) {
	newProject(t, nil)

	_, err := execute(t, "plan", "show", "missing")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestPlanShow_Script(t *testing.T) {
	newProject(t, map[string]string{"pipeline.yaml": copyWorkflow})

	out, err := execute(t, "workflow", "plan", "-o", "json", "pipeline.yaml")
	require.NoError(t, err)
	var decisions []formatting.Decision
	require.NoError(t, json.Unmarshal([]byte(out), &decisions))
	root := decisions[len(decisions)-1]

	out, err = execute(t, "plan", "show", "--script", root.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "set -euo pipefail")
	assert.Contains(t, out, "cp in.txt mid.txt")
}
