package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		logLevel   string
	}{
		{name: "defaults"},
		{name: "custom config path", configPath: "/custom/config/path"},
		{name: "log level override", logLevel: "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.configPath, tt.logLevel)

			assert.Equal(t, tt.configPath, cfg.ConfigPath)
			assert.Equal(t, tt.logLevel, cfg.LogLevel)
			assert.Empty(t, cfg.WorkDir)
			assert.Nil(t, cfg.LineageConfig)
		})
	}
}
