// Package runner executes plans through pluggable backends.
//
// Two backends are provided:
//   - local: runs each plan as a child process in topological order and
//     records one activity per plan, with checksums of its usages and
//     generations
//   - script: renders the plans as a POSIX shell script without running them
//
// Order computes the execution order of the leaf plans of a composite.
package runner
