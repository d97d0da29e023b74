package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/lineage/internal/api"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeParseError indicates an invalid workflow file.
	ExitCodeParseError = 2
	// ExitCodeGraphCycle indicates that the plans depend on each other in a cycle.
	ExitCodeGraphCycle = 3
)

var (
	rootConfigPath   string
	rootLogLevel     string
	rootOutputFormat string
	rootQuiet        bool
)

// rootCmd represents the base command for the lineage application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Track how the files of a project are produced",
	Long: `lineage turns command lines and workflow files into versioned plans,
records every execution as an activity with the files it read and wrote,
and tells you which outputs are out of date once their inputs change.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "lineage version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var parseErr *api.ParseError
	if errors.As(err, &parseErr) {
		return ExitCodeParseError
	}

	var cycleErr *api.GraphCycleError
	if errors.As(err, &cycleErr) {
		return ExitCodeGraphCycle
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Configuration directory (default: ./.lineage)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn or error (default: from config)")
	rootCmd.PersistentFlags().StringVarP(&rootOutputFormat, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false, "Suppress progress indicators and totals")

	rootCmd.AddCommand(newVersionCmd())
}
