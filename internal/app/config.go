package app

import (
	"io"

	"github.com/giantswarm/lineage/internal/config"
)

// Config holds the application configuration
type Config struct {
	// WorkDir is the project root; empty means the current directory
	WorkDir string

	// ConfigPath is the directory holding config.yaml; empty means
	// <WorkDir>/.lineage
	ConfigPath string

	// LogLevel overrides the configured level when set
	LogLevel string

	// LogOutput receives log records; nil means stderr
	LogOutput io.Writer

	// LineageConfig is loaded by NewApplication when nil
	LineageConfig *config.LineageConfig
}

// NewConfig creates a new application configuration
func NewConfig(configPath, logLevel string) *Config {
	return &Config{
		ConfigPath: configPath,
		LogLevel:   logLevel,
	}
}
