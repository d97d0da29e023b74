package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/lineage/internal/dependency"
	"github.com/giantswarm/lineage/internal/workflow"
)

var (
	graphNoVirtualLinks bool
	graphHistory        bool
)

// graphCmd prints the execution graph of workflow files or of the recorded
// activities.
var graphCmd = &cobra.Command{
	Use:   "graph [file...]",
	Short: "Show the execution order of workflow steps",
	Long: `Graph loads the given workflow files, links every step reading a path to
the steps writing it and prints the steps in execution order together with
the edges. Exits with code 3 when the steps depend on each other in a cycle.

With --history the graph is built from the recorded activities instead:
each activity is linked to the earlier activities that produced what it read.`,
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	if !graphHistory && len(args) == 0 {
		return fmt.Errorf("at least one workflow file is required")
	}

	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	services := application.Services()

	var (
		nodes []dependency.Node
		opts  = dependency.Options{VirtualLinks: services.Config.VirtualLinks && !graphNoVirtualLinks}
	)
	if graphHistory {
		acts, err := services.Activities.List()
		if err != nil {
			return err
		}
		nodes = dependency.FromActivities(acts)
		opts.VirtualLinks = true
		opts.OrderedProducers = true
	} else {
		files, err := services.Loader.LoadAll(cmd.Context(), args)
		if err != nil {
			return err
		}
		for _, f := range files {
			logWarnings(f.Path, f.Warnings)
		}
		nodes = dependency.FromPlans(workflow.Plans(files))
	}

	g, err := dependency.Build(nodes, opts)
	if err != nil {
		return err
	}
	return formatter.FormatGraph(g, g.TopologicalOrder())
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().BoolVar(&graphNoVirtualLinks, "no-virtual-links", false, "Do not link outputs to inputs sharing a path")
	graphCmd.Flags().BoolVar(&graphHistory, "history", false, "Build the graph from the recorded activities")
}
