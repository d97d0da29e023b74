package status

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter restricts a status report to some paths. Each entry is either a
// doublestar pattern (`data/**/*.csv`) or a path prefix (`data/raw`). A nil
// or empty filter matches every path.
type PathFilter struct {
	patterns []string
}

// NewPathFilter validates the given patterns.
func NewPathFilter(patterns ...string) (*PathFilter, error) {
	f := &PathFilter{}
	for _, p := range patterns {
		p = filepath.ToSlash(filepath.Clean(p))
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid path pattern %q", p)
		}
		f.patterns = append(f.patterns, p)
	}
	return f, nil
}

// Match reports whether path is selected by the filter.
func (f *PathFilter) Match(path string) bool {
	if f == nil || len(f.patterns) == 0 {
		return true
	}
	path = filepath.ToSlash(filepath.Clean(path))
	for _, p := range f.patterns {
		if p == "." || path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}

// Patterns returns the configured patterns.
func (f *PathFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}
