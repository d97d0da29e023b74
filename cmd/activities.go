package cmd

import (
	"github.com/spf13/cobra"

	"github.com/giantswarm/lineage/internal/activity"
)

var activitiesLimit int

// activitiesCmd lists recorded activities, newest last.
var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List recorded activities",
	Args:  cobra.NoArgs,
	RunE:  runActivities,
}

func runActivities(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}

	acts, err := application.Services().Activities.List()
	if err != nil {
		return err
	}
	activity.SortByStart(acts)
	if activitiesLimit > 0 && len(acts) > activitiesLimit {
		acts = acts[len(acts)-activitiesLimit:]
	}
	return formatter.FormatActivities(acts)
}

func init() {
	rootCmd.AddCommand(activitiesCmd)

	activitiesCmd.Flags().IntVarP(&activitiesLimit, "limit", "n", 0, "Only list the newest n activities")
}
