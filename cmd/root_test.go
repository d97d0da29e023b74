package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"github.com/giantswarm/lineage/internal/api"
)

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	if rootCmd.Version != "1.2.3-test" {
		t.Errorf("Expected version to be %s, got %s", "1.2.3-test", rootCmd.Version)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "lineage" {
		t.Errorf("Expected Use to be 'lineage', got %s", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}
	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "lineage version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	if got := buf.String(); got != "lineage version 1.0.0\n" {
		t.Errorf("Expected version output %q, got %q", "lineage version 1.0.0\n", got)
	}
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}

	for _, expected := range []string{"version", "classify", "workflow", "graph", "run", "status", "plan", "activities", "serve"} {
		if !found[expected] {
			t.Errorf("Expected subcommand %s not found", expected)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for _, name := range []string{"config-path", "log-level", "output", "quiet"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected persistent flag --%s", name)
		}
	}
	if f := flags.Lookup("output"); f != nil && f.DefValue != "table" {
		t.Errorf("Expected --output to default to table, got %s", f.DefValue)
	}
	if f := flags.ShorthandLookup("o"); f == nil || f.Name != "output" {
		t.Error("Expected -o to be the shorthand of --output")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: ExitCodeSuccess,
		},
		{
			name:     "generic error",
			err:      errors.New("boom"),
			expected: ExitCodeError,
		},
		{
			name:     "parse error",
			err:      &api.ParseError{File: "wf.yaml", Message: "bad"},
			expected: ExitCodeParseError,
		},
		{
			name:     "wrapped parse error",
			err:      fmt.Errorf("loading: %w", &api.ParseError{Message: "bad"}),
			expected: ExitCodeParseError,
		},
		{
			name:     "graph cycle",
			err:      &api.GraphCycleError{Cycle: []string{"a", "x", "b", "y", "a"}},
			expected: ExitCodeGraphCycle,
		},
		{
			name:     "not found",
			err:      api.NewPlanNotFoundError("nope"),
			expected: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.expected {
				t.Errorf("getExitCode() = %d, expected %d", got, tt.expected)
			}
		})
	}
}
