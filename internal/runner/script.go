package runner

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/internal/template"
	"github.com/giantswarm/lineage/pkg/logging"
)

const scriptTemplateName = "script"

// DefaultScriptTemplate renders plans as a bash script.
const DefaultScriptTemplate = `#!/usr/bin/env bash
# {{ .Name }}{{ with .Description }}: {{ . }}{{ end }}
set -euo pipefail
{{- with .Dir }}
cd {{ quoteShell . }}
{{- end }}
{{ range .Steps }}
# {{ .Name }}{{ with .Keywords }} [{{ join ", " . }}]{{ end }}
{{- with .Description }}
# {{ . }}
{{- end }}
{{- range .Folders }}
mkdir -p {{ quoteShell . }}
{{- end }}
{{ .CommandLine }}
{{ end -}}
`

// ScriptBackend renders plans as a shell script instead of running them.
type ScriptBackend struct {
	engine *template.Engine
}

// NewScriptBackend creates a script backend. An empty text selects
// DefaultScriptTemplate.
func NewScriptBackend(text string) (*ScriptBackend, error) {
	if text == "" {
		text = DefaultScriptTemplate
	}
	engine := template.New(map[string]interface{}{"quoteShell": plan.ShellQuote})
	if err := engine.Add(scriptTemplateName, text); err != nil {
		return nil, err
	}
	return &ScriptBackend{engine: engine}, nil
}

func (b *ScriptBackend) Name() string { return string(BackendTypeScript) }

type scriptStep struct {
	Name        string
	Description string
	Keywords    []string
	Folders     []string
	CommandLine string
}

// Render returns the script of job.
func (b *ScriptBackend) Render(job Job, extra template.Data) (string, error) {
	steps := make([]scriptStep, 0, len(job.Plans))
	for _, p := range job.Plans {
		line, err := p.CommandLine()
		if err != nil {
			return "", err
		}
		step := scriptStep{Name: p.Name, Description: p.Description, Keywords: p.Keywords, CommandLine: line}
		for _, out := range p.Outputs {
			if out.CreateFolder {
				step.Folders = append(step.Folders, path.Dir(out.Path))
			}
		}
		steps = append(steps, step)
	}

	data := template.Merge(template.Data{"Description": ""}, extra, template.Data{
		"Name":  job.Name,
		"Dir":   job.Dir,
		"Steps": steps,
	})
	return b.engine.Render(scriptTemplateName, data)
}

// Execute writes the script to job.Stdout. Nothing runs, so no activities
// are recorded.
func (b *ScriptBackend) Execute(ctx context.Context, job Job) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	script, err := b.Render(job, nil)
	if err != nil {
		return nil, err
	}
	if job.Stdout == nil {
		return nil, fmt.Errorf("script backend needs an output writer")
	}
	if _, err := io.WriteString(job.Stdout, script); err != nil {
		return nil, fmt.Errorf("failed to write script: %w", err)
	}
	logging.Debug("Runner", "Rendered script for %s with %d plans", job.Name, len(job.Plans))
	return &Result{}, nil
}
