package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEntityName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "simple", input: "head"},
		{name: "dotted and dashed", input: "wf.step-1_a"},
		{name: "empty", input: "", wantErr: "is required"},
		{name: "spaces", input: "my step", wantErr: "cannot contain spaces"},
		{name: "leading dash", input: "-x", wantErr: "may only contain"},
		{name: "slash", input: "a/b", wantErr: "may only contain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntityName(tt.input, "step")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no validation errors", errs.Error())

	errs.Add("steps", "must not be empty")
	assert.Equal(t, "field 'steps': must not be empty", errs.Error())

	errs.Add("name", "is required", "")
	assert.True(t, errs.HasErrors())
	assert.Equal(t, "validation failed: field 'steps': must not be empty; field 'name': is required", errs.Error())
}

func TestValidateOneOf(t *testing.T) {
	assert.NoError(t, ValidateOneOf("logFormat", "json", []string{"text", "json"}))
	err := ValidateOneOf("logFormat", "xml", []string{"text", "json"})
	require.Error(t, err)
	assert.Equal(t, "field 'logFormat': must be one of: text, json", err.Error())
}

func TestConfigurationError(t *testing.T) {
	err := ConfigurationError{FileName: "wf.yml", LineNumber: 4, Message: "bad"}
	assert.Equal(t, "wf.yml:4: bad", err.Error())
	assert.Contains(t, err.DetailedError(), "Line: 4")
}
