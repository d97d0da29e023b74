package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Render(t *testing.T) {
	e := New(map[string]interface{}{"shout": strings.ToUpper})
	require.NoError(t, e.Add("greet", `{{ .name | shout }} {{ join "," .tags }}{{ .missing | default "" }}`))
	assert.True(t, e.Has("greet"))

	out, err := e.Render("greet", map[string]interface{}{"name": "lineage", "tags": []string{"a", "b"}, "missing": ""})
	require.NoError(t, err)
	assert.Equal(t, "LINEAGE a,b", out)

	_, err = e.Render("greet", map[string]interface{}{"tags": []string{}})
	assert.Error(t, err)

	_, err = e.Render("nope", nil)
	assert.Error(t, err)
}

func TestEngine_RenderString(t *testing.T) {
	e := New(nil)

	out, err := e.RenderString("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)

	out, err = e.RenderString(`{{ .n | add 1 }}`, map[string]interface{}{"n": 41})
	require.NoError(t, err)
	assert.Equal(t, "42", out)

	_, err = e.RenderString(`{{ .n `, nil)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	merged := Merge(Data{"a": 1, "b": 2}, nil, Data{"b": 3})
	assert.Equal(t, Data{"a": 1, "b": 3}, merged)
}
