package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/giantswarm/lineage/internal/app"
	"github.com/giantswarm/lineage/internal/runner"
)

var (
	runProvider string
	runTimeout  time.Duration
)

// runCmd executes the steps of a workflow file.
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute the steps of a workflow file",
	Long: `Run resolves the plans of a workflow file, orders the steps so that
producers run before consumers and executes them with the chosen backend:

  local   runs every step in the project directory and records an activity
          with the checksums of the files it read and wrote
  script  prints a shell script running the steps instead

Execution stops at the first step that exits with a code outside of its
success codes. Activities of the steps that ran are recorded either way.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
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

	backend, err := services.NewBackend(runProvider)
	if err != nil {
		return err
	}
	script := backend.Name() == string(runner.BackendTypeScript)

	resolved, _, err := services.ResolvePlans(f.ToPlans(), !script)
	if err != nil {
		return err
	}
	plans, err := runner.Order(resolved, services.Config.VirtualLinks)
	if err != nil {
		return err
	}

	job := runner.Job{
		Name:    resolved.GetName(),
		PlanID:  resolved.GetID(),
		Plans:   plans,
		Dir:     services.Root,
		Timeout: runTimeout,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	}
	if script {
		job.Dir = ""
		_, err := backend.Execute(cmd.Context(), job)
		return err
	}

	var s *spinner.Spinner
	if !rootQuiet && isTerminal(os.Stderr) {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = fmt.Sprintf(" Running %d steps of %s...", len(plans), job.Name)
		s.Start()
	}

	res, execErr := backend.Execute(cmd.Context(), job)

	if s != nil {
		s.Stop()
	}

	if err := recordResult(services, res); err != nil {
		return errors.Join(execErr, err)
	}
	if execErr != nil {
		if res != nil && len(res.Activities) > 0 {
			_ = formatter.FormatActivities(res.Activities)
		}
		return execErr
	}
	return formatter.FormatActivities(res.Activities)
}

// recordResult stores the activities and the collection of a run.
func recordResult(services *app.Services, res *runner.Result) error {
	if res == nil {
		return nil
	}
	for _, a := range res.Activities {
		if err := services.Activities.Add(a); err != nil {
			return fmt.Errorf("failed to record activity of %s: %w", a.PlanName, err)
		}
	}
	if res.Collection != nil && len(res.Collection.ActivityIDs) > 0 {
		if err := services.Activities.AddCollection(res.Collection); err != nil {
			return fmt.Errorf("failed to record run of %s: %w", res.Collection.PlanID, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runProvider, "provider", "", "Execution backend: local or script (default: from config)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Timeout per step, 0 for none")
}
