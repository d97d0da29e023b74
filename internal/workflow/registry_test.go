package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"hcl", "yaml"}, r.Names())

	f, err := r.ForPath("flows/analysis.YML")
	require.NoError(t, err)
	assert.Equal(t, "yaml", f.Name())

	f, err = r.ForPath("analysis.hcl")
	require.NoError(t, err)
	assert.Equal(t, "hcl", f.Name())

	_, err = r.ForPath("analysis.toml")
	assert.ErrorContains(t, err, ".toml")

	_, ok := r.Get("yaml")
	assert.True(t, ok)

	assert.Error(t, r.Register(YAMLFormat{}))
}

func TestNewRegistry_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() { NewRegistry(HCLFormat{}, HCLFormat{}) })
}
