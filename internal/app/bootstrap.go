package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/giantswarm/lineage/internal/config"
	"github.com/giantswarm/lineage/pkg/logging"
)

// Application is a bootstrapped lineage process.
//
// Example usage:
//
//	application, err := app.NewApplication(app.NewConfig("", "debug"))
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	services := application.Services()
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads the configuration, initialises logging and creates
// the services.
func NewApplication(cfg *Config) (*Application, error) {
	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		cfg.WorkDir = wd
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = filepath.Join(cfg.WorkDir, config.DefaultStateDir)
	}

	if cfg.LineageConfig == nil {
		lineageCfg, err := config.LoadConfig(cfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load lineage configuration from path %s: %w", cfg.ConfigPath, err)
		}
		cfg.LineageConfig = &lineageCfg
	}

	if err := initLogging(cfg); err != nil {
		return nil, err
	}
	logging.Debug("Bootstrap", "Using configuration directory %s", cfg.ConfigPath)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

func initLogging(cfg *Config) error {
	levelName := cfg.LineageConfig.LogLevel
	if cfg.LogLevel != "" {
		levelName = cfg.LogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}

	var output io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		output = cfg.LogOutput
	}
	logging.Init(level, logging.Format(cfg.LineageConfig.LogFormat), output)
	return nil
}

// Services returns the initialised services.
func (a *Application) Services() *Services {
	return a.services
}

// Config returns the resolved application configuration.
func (a *Application) Config() *Config {
	return a.config
}

// ServeMCP runs the MCP server until the client disconnects or ctx is
// cancelled.
func (a *Application) ServeMCP(ctx context.Context, version string) error {
	return RunMCPServer(ctx, a.services, version)
}
