package workflow

import (
	"context"
	"fmt"

	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/pkg/logging"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Loader reads, validates and binds workflow files.
type Loader struct {
	registry *Registry
	fs       afero.Fs
}

// NewLoader creates a loader. A nil registry means DefaultRegistry and a nil
// filesystem means the OS filesystem.
func NewLoader(registry *Registry, fs afero.Fs) *Loader {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{registry: registry, fs: fs}
}

// Load parses the workflow file at path and binds every step. The returned
// steps carry final positions, stream mappings and base commands; warnings
// are collected in File.Warnings.
func (l *Loader) Load(path string) (*File, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}
	return l.Parse(path, data)
}

// Parse is Load on already read content.
func (l *Loader) Parse(path string, data []byte) (*File, error) {
	format, err := l.registry.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := format.Parse(path, data)
	if err != nil {
		return nil, err
	}
	f.Path = path
	if err := f.Validate(); err != nil {
		return nil, err
	}

	for i, step := range f.Steps {
		res, err := BindStep(step)
		if err != nil {
			return nil, withFile(err, path)
		}
		f.Steps[i] = res.Step
		f.Warnings = append(f.Warnings, res.Warnings...)
	}

	for _, w := range f.Warnings {
		logging.Debug("Workflow", "%s: %s", path, w)
	}
	logging.Debug("Workflow", "Loaded workflow %s from %s (%s, %d steps)", f.Name, path, format.Name(), len(f.Steps))
	return f, nil
}

// LoadAll loads several workflow files concurrently. The result keeps the
// order of paths; the first failure cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]*File, error) {
	files := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := l.Load(path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Plans converts files into their composite plans.
func Plans(files []*File) []plan.AbstractPlan {
	plans := make([]plan.AbstractPlan, len(files))
	for i, f := range files {
		plans[i] = f.ToPlans()
	}
	return plans
}
