// Package logging provides subsystem-tagged structured logging for lineage.
//
// It is a thin layer over log/slog. Every entry carries a subsystem attribute
// so that output from the parser, the graph builder, the stores and the CLI
// can be told apart and filtered:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Workflow", "Loaded %d steps from %s", len(steps), path)
//	logging.Warn("Binder", "argument %q is not used in the command", name)
//	logging.Error("PlanStore", err, "failed to persist plan %s", id)
//
// The core packages (classifier, cmdline, plan, dependency, status) only log
// at DEBUG level. Anything a user needs to act on is returned as data or as
// an error and surfaced by the command layer.
//
// Until InitForCLI or Init is called, entries at INFO and above are written
// to stderr with the text handler.
package logging
