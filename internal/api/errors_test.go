package api

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NewPlanNotFoundError("abc")
	assert.Equal(t, "plan abc not found", err.Error())
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", err)))
	assert.False(t, IsNotFound(fmt.Errorf("other")))

	custom := &NotFoundError{ResourceType: "plan", ResourceName: "x", Message: "gone"}
	assert.Equal(t, "gone", custom.Error())
}

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name:     "message only",
			err:      &ParseError{Message: "empty command"},
			expected: "parse error: empty command",
		},
		{
			name: "full context",
			err: &ParseError{
				File:      "workflow.yml",
				Line:      12,
				Step:      "wf.head",
				Attribute: "command",
				Token:     "|",
				Position:  8,
				Message:   "multi-command constructs are not supported",
			},
			expected: `parse error in workflow.yml:12 (step "wf.head", command): multi-command constructs are not supported near "|" at offset 8`,
		},
		{
			name:     "attribute without step",
			err:      &ParseError{Attribute: "steps", Message: "must not be empty"},
			expected: "parse error (steps): must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsParseError(t *testing.T) {
	err := fmt.Errorf("loading: %w", &ParseError{Message: "bad"})
	assert.True(t, IsParseError(err))
	assert.False(t, IsParseError(&GraphCycleError{}))
}

func TestGraphCycleError(t *testing.T) {
	err := &GraphCycleError{Cycle: []string{"a", "output x -> input x (x)", "b", "output y -> input y (y)", "a"}}
	assert.Equal(t, "cycle detected in execution graph: a -> output x -> input x (x) -> b -> output y -> input y (y) -> a", err.Error())
	assert.True(t, IsGraphCycleError(fmt.Errorf("build: %w", err)))
}

func TestRepositorySnapshot_Changed(t *testing.T) {
	snap := RepositorySnapshot{
		UnstagedChanges: []string{"a.csv"},
		StagedChanges:   []string{"b.csv"},
	}
	assert.True(t, snap.Changed("a.csv"))
	assert.True(t, snap.Changed("b.csv"))
	assert.False(t, snap.Changed("c.csv"))
}

func TestPathCheckerFunc(t *testing.T) {
	checker := PathCheckerFunc(func(candidate string) (PathInfo, bool) {
		return PathInfo{IsDir: candidate == "data"}, candidate == "data" || candidate == "file.txt"
	})

	info, ok := checker.Stat("data")
	assert.True(t, ok)
	assert.True(t, info.IsDir)

	_, ok = checker.Stat("missing")
	assert.False(t, ok)
}
