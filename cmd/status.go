package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/lineage/internal/app"
	"github.com/giantswarm/lineage/internal/config"
	"github.com/giantswarm/lineage/internal/formatting"
	"github.com/giantswarm/lineage/internal/repository"
	"github.com/giantswarm/lineage/internal/status"
	"github.com/giantswarm/lineage/pkg/logging"
)

var statusWatch bool

// statusCmd reports outputs that are stale because an input they were
// derived from changed.
var statusCmd = &cobra.Command{
	Use:   "status [path...]",
	Short: "Show outputs that are out of date",
	Long: `Status compares the checksums recorded by past activities with the
current repository state. Every output derived, directly or through other
activities, from a modified input is reported as out of date together with
the inputs that caused it. Deleted inputs are listed separately.

Paths restrict the report to outputs below them. Doublestar patterns such
as 'data/**/*.csv' are accepted.

With --watch the report is printed again whenever a file read by a recorded
activity changes, until interrupted.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	filter, err := status.NewPathFilter(args...)
	if err != nil {
		return err
	}
	services := application.Services()

	if err := reportStatus(services, formatter, filter); err != nil {
		return err
	}
	if !statusWatch {
		return nil
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return watchStatus(ctx, application, formatter, filter)
}

func reportStatus(services *app.Services, formatter formatting.Formatter, filter *status.PathFilter) error {
	history, err := services.Activities.List()
	if err != nil {
		return err
	}
	snapshot, err := services.Snapshot()
	if err != nil {
		return err
	}
	st, err := status.Check(history, snapshot, services.Checker, services.Hasher, filter)
	if err != nil {
		return err
	}
	return formatter.FormatStatus(st)
}

func watchStatus(ctx context.Context, application *app.Application, formatter formatting.Formatter, filter *status.PathFilter) error {
	services := application.Services()
	dirs, err := watchedDirs(services)
	if err != nil {
		return err
	}

	stateDir := config.ResolveStateDir(application.Config().ConfigPath, services.Config)
	watcher := repository.NewWatcher(services.Root, time.Duration(services.Config.Status.WatchDebounce), stateDir)
	changes := make(chan []string, 16)
	if err := watcher.Start(ctx, dirs, changes); err != nil {
		return fmt.Errorf("failed to watch %s: %w", services.Root, err)
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-changes:
			logging.Debug("Status", "Re-checking after %d changed paths", len(batch))
			if err := reportStatus(services, formatter, filter); err != nil {
				logging.Error("Status", err, "Failed to compute status")
			}
		}
	}
}

// watchedDirs lists the project root and the directories of every path
// recorded by an activity.
func watchedDirs(services *app.Services) ([]string, error) {
	history, err := services.Activities.List()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{".": true}
	for _, a := range history {
		for _, u := range a.Usages {
			seen[filepath.Dir(u.Path)] = true
		}
		for _, g := range a.Generations {
			seen[filepath.Dir(g.Path)] = true
		}
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Print the report again whenever a recorded file changes")
}
