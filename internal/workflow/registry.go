package workflow

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Format parses one workflow file syntax.
type Format interface {
	// Name identifies the format, e.g. "yaml"
	Name() string
	// Extensions lists the file extensions handled by the format, with the dot
	Extensions() []string
	// Parse decodes data read from path. The returned file is not validated.
	Parse(path string, data []byte) (*File, error)
}

// Registry maps file extensions to formats.
type Registry struct {
	mu         sync.RWMutex
	formats    map[string]Format
	extensions map[string]Format
}

// NewRegistry creates a registry holding the given formats. It panics if two
// formats share a name or extension.
func NewRegistry(formats ...Format) *Registry {
	r := &Registry{
		formats:    make(map[string]Format),
		extensions: make(map[string]Format),
	}
	for _, f := range formats {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
	return r
}

// DefaultRegistry returns a registry with the YAML and HCL formats.
func DefaultRegistry() *Registry {
	return NewRegistry(YAMLFormat{}, HCLFormat{})
}

// Register adds a format.
func (r *Registry) Register(f Format) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formats[f.Name()]; exists {
		return fmt.Errorf("workflow format %s is already registered", f.Name())
	}
	for _, ext := range f.Extensions() {
		if other, exists := r.extensions[strings.ToLower(ext)]; exists {
			return fmt.Errorf("extension %s of format %s is already handled by %s", ext, f.Name(), other.Name())
		}
	}

	r.formats[f.Name()] = f
	for _, ext := range f.Extensions() {
		r.extensions[strings.ToLower(ext)] = f
	}
	return nil
}

// Get returns the format with the given name.
func (r *Registry) Get(name string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[name]
	return f, ok
}

// ForPath returns the format handling the extension of path.
func (r *Registry) ForPath(path string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := r.extensions[ext]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no workflow format handles %q files (known: %s)", ext, strings.Join(r.namesLocked(), ", "))
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
