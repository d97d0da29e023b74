package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// LineageConfig is the top-level configuration structure for lineage.
type LineageConfig struct {
	// StateDir holds the plan and activity stores. Relative paths are
	// resolved against the configuration directory's parent.
	StateDir string `yaml:"stateDir,omitempty"`
	// Provider names the default execution backend (local, script)
	Provider string `yaml:"provider,omitempty"`
	// VirtualLinks enables linking outputs to inputs by path equality
	VirtualLinks bool `yaml:"virtualLinks"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"logLevel,omitempty"`
	// LogFormat is text or json
	LogFormat string       `yaml:"logFormat,omitempty"`
	Status    StatusConfig `yaml:"status,omitempty"`
}

// StatusConfig configures `lineage status`.
type StatusConfig struct {
	WatchDebounce Duration `yaml:"watchDebounce,omitempty"`
}

// Duration is a time.Duration that reads and writes Go duration strings in YAML.
type Duration time.Duration

// UnmarshalYAML parses values such as "500ms" or "2s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q at line %d: %w", raw, value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in Go notation.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Validate checks the configuration values that have a closed set of options.
func (c LineageConfig) Validate() error {
	var errs ValidationErrors

	if err := ValidateOneOf("logLevel", c.LogLevel, []string{"debug", "info", "warn", "error"}); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if err := ValidateOneOf("logFormat", c.LogFormat, []string{"text", "json"}); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if err := ValidateRequired("provider", c.Provider, "config"); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if c.Status.WatchDebounce < 0 {
		errs.Add("status.watchDebounce", "must not be negative", c.Status.WatchDebounce)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
