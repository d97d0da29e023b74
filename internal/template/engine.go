// Package template renders text templates with the sprig function library.
// It backs the shell-script export of plans.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders text/template templates with the sprig function library.
// Parsed templates are cached by name.
type Engine struct {
	mu        sync.Mutex
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// New creates a new template engine. extra functions override sprig ones.
func New(extra template.FuncMap) *Engine {
	funcs := sprig.TxtFuncMap()
	for name, fn := range extra {
		funcs[name] = fn
	}
	return &Engine{
		templates: make(map[string]*template.Template),
		funcs:     funcs,
	}
}

// Add parses text and stores it under name, replacing any previous template.
func (e *Engine) Add(name, text string) error {
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(e.funcs).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	e.mu.Lock()
	e.templates[name] = tmpl
	e.mu.Unlock()
	return nil
}

// Has reports whether a template is stored under name.
func (e *Engine) Has(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.templates[name]
	return ok
}

// Render executes the template stored under name.
func (e *Engine) Render(name string, data interface{}) (string, error) {
	e.mu.Lock()
	tmpl, ok := e.templates[name]
	e.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderString parses and executes text without caching it. Text without
// template markers is returned as is.
func (e *Engine) RenderString(text string, data interface{}) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("inline").Option("missingkey=error").Funcs(e.funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
