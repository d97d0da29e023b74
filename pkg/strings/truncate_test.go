package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "short", input: "train model", maxLen: 20, expected: "train model"},
		{name: "exact", input: "hello", maxLen: 5, expected: "hello"},
		{name: "cut", input: "preprocess the raw measurements", maxLen: 15, expected: "preprocess t..."},
		{name: "newlines collapse", input: "first line\n\n  second", maxLen: 40, expected: "first line second"},
		{name: "unicode", input: "größenverhältnis", maxLen: 8, expected: "größe..."},
		{name: "tiny max clamps", input: "abcdefgh", maxLen: 1, expected: "a..."},
		{name: "empty", input: "", maxLen: 10, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.maxLen))
		})
	}
}

func TestTruncateList(t *testing.T) {
	assert.Equal(t, "a.csv, b.csv", TruncateList([]string{"a.csv", "b.csv"}, 60))
	assert.Equal(t, "a.csv, ...", TruncateList([]string{"a.csv", "b.csv", "c.csv"}, 10))
	assert.Equal(t, "", TruncateList(nil, 10))
}
