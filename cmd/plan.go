package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/app"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/internal/runner"
)

var (
	planShowScript bool
	planListAll    bool
)

// planCmd groups the commands operating on stored plans.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Inspect and remove stored plans",
	Long: `Plans are the versioned step definitions recorded by 'lineage run' and
'lineage workflow plan'. Every change to a step is stored as a new version
derived from the previous one; removing a plan appends a tombstone.`,
}

var planShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show the newest version of a plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanShow,
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans",
	Long: `List prints the newest version of every plan that has not been removed.
With --all every stored version, including tombstones, is listed in the
order it was recorded.`,
	Args: cobra.NoArgs,
	RunE: runPlanList,
}

var planRemoveCmd = &cobra.Command{
	Use:   "remove <id|name>",
	Short: "Remove a plan by appending a tombstone",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanRemove,
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	services := application.Services()

	p, err := findPlan(services, args[0])
	if err != nil {
		return err
	}

	if planShowScript {
		plans, err := runner.Order(p, services.Config.VirtualLinks)
		if err != nil {
			return err
		}
		backend, err := runner.NewScriptBackend("")
		if err != nil {
			return err
		}
		script, err := backend.Render(runner.Job{Name: p.GetName(), PlanID: p.GetID(), Plans: plans}, nil)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), script)
		return err
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	return formatter.FormatPlan(p)
}

func runPlanList(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	services := application.Services()

	if planListAll {
		return formatter.FormatPlans(services.Plans.List())
	}

	newest := services.Plans.GetNewestByNames()
	names := make([]string, 0, len(newest))
	for name := range newest {
		names = append(names, name)
	}
	sort.Strings(names)
	plans := make([]plan.AbstractPlan, 0, len(names))
	for _, name := range names {
		plans = append(plans, newest[name])
	}
	return formatter.FormatPlans(plans)
}

func runPlanRemove(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	services := application.Services()

	tomb, err := plan.Remove(services.Plans, args[0], services.Now)
	if err != nil {
		return err
	}
	if !rootQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed plan %s (%s)\n", tomb.GetName(), tomb.Meta().DerivedFrom)
	}
	return nil
}

// findPlan returns the newest version of the plan with the given id or name.
func findPlan(services *app.Services, idOrName string) (plan.AbstractPlan, error) {
	if p, ok := services.Plans.GetLatest(idOrName); ok {
		return p, nil
	}
	if p, ok := services.Plans.GetByName(idOrName); ok {
		if latest, ok := services.Plans.GetLatest(p.GetID()); ok {
			return latest, nil
		}
		return p, nil
	}
	return nil, api.NewPlanNotFoundError(idOrName)
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planShowCmd, planListCmd, planRemoveCmd)

	planShowCmd.Flags().BoolVar(&planShowScript, "script", false, "Print the plan as a shell script")
	planListCmd.Flags().BoolVar(&planListAll, "all", false, "List every stored version including tombstones")
}
