// Package app bootstraps a lineage process: it loads the project
// configuration, initialises logging and wires the stores, the workflow
// loader and the repository access into one Services value.
//
// # Bootstrap
//
// NewApplication performs, in order:
//
//  1. Configuration loading from <config-path>/config.yaml, defaults otherwise
//  2. Logging initialisation (level and format from flags or config)
//  3. Service initialisation (InitializeServices)
//
// # Services
//
// Services is shared by every command of a process:
//
//   - Plans: the file-backed plan store under <stateDir>/plans
//   - Activities: the file-backed activity store under <stateDir>/activities
//   - Loader: the workflow-file loader with the YAML and HCL formats
//   - Checker and Hasher: filesystem access relative to the project root
//   - Repository: the enclosing git repository, nil outside of one
//
// The project root is the working directory. Repository paths are rebased
// onto it so that snapshots and recorded activities use the same relative
// paths.
//
// # Modes
//
// Commands run against Services directly. RunMCPServer serves the MCP tools
// on stdio until the client disconnects or the process is interrupted.
package app
