package config

import "time"

const (
	// DefaultStateDir is the project-local directory holding config and stores
	DefaultStateDir = ".lineage"

	// DefaultProvider is the execution backend used when none is configured
	DefaultProvider = "local"

	// DefaultWatchDebounce coalesces bursts of filesystem events in status --watch
	DefaultWatchDebounce = 500 * time.Millisecond
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() LineageConfig {
	return LineageConfig{
		StateDir:     DefaultStateDir,
		Provider:     DefaultProvider,
		VirtualLinks: true,
		LogLevel:     "info",
		LogFormat:    "text",
		Status: StatusConfig{
			WatchDebounce: Duration(DefaultWatchDebounce),
		},
	}
}
