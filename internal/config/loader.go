package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/lineage/pkg/logging"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// LoadConfig loads configuration from a single specified directory.
// The directory should contain config.yaml; when it does not, defaults are returned.
func LoadConfig(configPath string) (LineageConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return LineageConfig{}, fmt.Errorf("failed to read %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return LineageConfig{}, ConfigurationError{
			FilePath:  configFilePath,
			FileName:  configFileName,
			ErrorType: "parse",
			Message:   err.Error(),
			Suggestions: []string{
				"Check the YAML syntax of config.yaml",
			},
		}
	}
	if err := config.Validate(); err != nil {
		return LineageConfig{}, FormatValidationError("config", configFilePath, err)
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// ResolveStateDir returns the directory the stores write to. A relative
// stateDir is taken relative to the parent of the configuration directory so
// that the default `.lineage` lands in the project root.
func ResolveStateDir(configPath string, cfg LineageConfig) string {
	if cfg.StateDir == "" {
		return configPath
	}
	if filepath.IsAbs(cfg.StateDir) {
		return cfg.StateDir
	}
	return filepath.Join(filepath.Dir(filepath.Clean(configPath)), cfg.StateDir)
}
