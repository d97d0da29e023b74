package cmd

import (
	"github.com/spf13/cobra"
)

var workflowDryRun bool

// workflowCmd groups the workflow-file commands.
var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Validate workflow files and turn them into plans",
	Long: `Workflow files declare named steps with their command, inputs, outputs and
parameters, in YAML (.yaml, .yml) or HCL (.hcl).`,
}

var workflowValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Parse a workflow file and bind its step commands",
	Long: `Validate parses a workflow file, binds every step command to its declared
arguments and prints the resulting steps. Binding warnings are logged.
Exits with code 2 when the file is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflowValidate,
}

var workflowPlanCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Resolve the plans of a workflow file against the plan store",
	Long: `Plan builds the plans of a workflow file and compares them with the
stored versions. Unchanged plans are reused, changed plans become new
versions deriving from the stored ones. New versions are stored unless
--dry-run is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflowPlan,
}

func runWorkflowValidate(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}

	f, err := application.Services().Loader.Load(args[0])
	if err != nil {
		return err
	}
	logWarnings(f.Path, f.Warnings)
	return formatter.FormatPlan(f.ToPlans())
}

func runWorkflowPlan(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	services := application.Services()

	f, err := services.Loader.Load(args[0])
	if err != nil {
		return err
	}
	logWarnings(f.Path, f.Warnings)

	_, decisions, err := services.ResolvePlans(f.ToPlans(), !workflowDryRun)
	if err != nil {
		return err
	}
	return formatter.FormatDecisions(decisions)
}

func init() {
	rootCmd.AddCommand(workflowCmd)
	workflowCmd.AddCommand(workflowValidateCmd)
	workflowCmd.AddCommand(workflowPlanCmd)

	workflowPlanCmd.Flags().BoolVar(&workflowDryRun, "dry-run", false, "Show the decisions without storing new versions")
}
