// Package mcpserver exposes lineage's read-only operations as Model Context
// Protocol tools over stdio, so that AI assistants can validate workflow
// files, inspect execution graphs, ask for the staleness status of a project
// and classify command lines.
//
// # Tools
//
//   - validate_workflow: parse and bind a workflow file, report steps and warnings
//   - plan_graph: build the execution graph of one or more workflow files
//   - workflow_status: report outdated outputs and modified or deleted inputs
//   - classify_command: split a command line into paths and parameters
//
// All tool results are JSON text. Domain errors such as parse errors or
// cycles are returned as tool errors, not protocol errors.
//
// # Usage
//
//	srv := mcpserver.New(version, mcpserver.Dependencies{
//	    Loader:     workflow.NewLoader(nil, nil),
//	    Activities: activities,
//	    Checker:    repository.NewFSChecker(afero.NewOsFs(), root),
//	    Snapshot:   repo.Snapshot,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package mcpserver
