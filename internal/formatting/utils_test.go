package formatting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{
			name:     "decision",
			input:    Decision{Name: "wf.head", Kind: "WorkflowFilePlan", Action: ActionReused, ID: "abc"},
			expected: "{\n  \"name\": \"wf.head\",\n  \"kind\": \"WorkflowFilePlan\",\n  \"action\": \"reused\",\n  \"id\": \"abc\"\n}",
		},
		{
			name:     "array",
			input:    []string{"a", "b"},
			expected: "[\n  \"a\",\n  \"b\"\n]",
		},
		{
			name:     "number",
			input:    123,
			expected: "123",
		},
		{
			name:     "nil",
			input:    nil,
			expected: "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PrettyJSON(tt.input))
		})
	}
}

func TestPrettyJSON_Unmarshalable(t *testing.T) {
	ch := make(chan int)
	result := PrettyJSON(ch)

	assert.NotEmpty(t, result)
	assert.Contains(t, result, "0x")
}
