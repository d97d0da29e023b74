package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/giantswarm/lineage/internal/status"
)

// BackendType names an execution backend
type BackendType string

const (
	BackendTypeLocal  BackendType = "local"
	BackendTypeScript BackendType = "script"
)

// BackendTypes lists the available backends.
func BackendTypes() []string {
	return []string{string(BackendTypeLocal), string(BackendTypeScript)}
}

// Options configure backends created by NewBackend
type Options struct {
	// Hasher computes checksums of usages and generations (local)
	Hasher status.Hasher
	// Now is the clock used for activity timestamps (local)
	Now func() time.Time
	// ScriptTemplate replaces the default script template (script)
	ScriptTemplate string
}

// NewBackend creates a new backend based on the specified type
func NewBackend(backendType string, opts Options) (Backend, error) {
	switch BackendType(strings.ToLower(backendType)) {
	case BackendTypeLocal, "":
		// Default to local if not specified
		return NewLocalBackend(opts.Hasher, opts.Now), nil
	case BackendTypeScript:
		return NewScriptBackend(opts.ScriptTemplate)
	default:
		return nil, fmt.Errorf("unsupported execution backend: %s (available: %s)", backendType, strings.Join(BackendTypes(), ", "))
	}
}
