package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/giantswarm/lineage/internal/app"
	"github.com/giantswarm/lineage/internal/config"
	"github.com/giantswarm/lineage/internal/formatting"
	"github.com/giantswarm/lineage/pkg/logging"
)

// newApplication bootstraps the services for one command invocation. Log
// records go to the command's error stream, and so does the detailed report
// of an invalid config.yaml.
func newApplication(cmd *cobra.Command) (*app.Application, error) {
	cfg := app.NewConfig(rootConfigPath, rootLogLevel)
	cfg.LogOutput = cmd.ErrOrStderr()

	application, err := app.NewApplication(cfg)
	if err != nil {
		var cfgErr config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(cmd.ErrOrStderr(), cfgErr.DetailedError())
		}
		return nil, err
	}
	return application, nil
}

// newFormatter creates the formatter selected by --output, writing to the
// command's output stream.
func newFormatter(cmd *cobra.Command) (formatting.Formatter, error) {
	format, err := formatting.ParseOutputFormat(rootOutputFormat)
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	return formatting.NewFactory().CreateFormatter(formatting.Options{
		Format: format,
		Quiet:  rootQuiet,
		Color:  isTerminal(out),
		Writer: out,
	}), nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// logWarnings reports binding warnings of a workflow file.
func logWarnings(path string, warnings []string) {
	for _, w := range warnings {
		logging.Warn("Workflow", "%s: %s", path, w)
	}
}
