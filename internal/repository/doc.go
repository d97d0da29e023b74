// Package repository gives read-only access to the working tree: a git
// snapshot of tracked, untracked and changed paths, git blob checksums of
// files, and a PathChecker over an afero filesystem.
package repository
