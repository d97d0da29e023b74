package api

// PathInfo describes a path that exists in the working tree.
type PathInfo struct {
	// IsDir is true when the path names a directory
	IsDir bool
}

// PathChecker is the filesystem predicate used by the argument classifier
// and by the staleness change-set builder.
//
// Stat returns the info for candidate and true when the path exists, or the
// zero PathInfo and false when it does not. Implementations decide how the
// candidate is resolved (relative to a repository root, a virtual filesystem,
// a fixed set in tests).
type PathChecker interface {
	Stat(candidate string) (PathInfo, bool)
}

// PathCheckerFunc adapts a plain function to the PathChecker interface.
type PathCheckerFunc func(candidate string) (PathInfo, bool)

// Stat implements PathChecker.
func (f PathCheckerFunc) Stat(candidate string) (PathInfo, bool) {
	return f(candidate)
}

// RepositorySnapshot is a point-in-time view of a repository working tree.
// All paths are relative to the repository root and use forward slashes.
type RepositorySnapshot struct {
	TrackedPaths    []string `json:"trackedPaths" yaml:"trackedPaths"`
	UntrackedPaths  []string `json:"untrackedPaths" yaml:"untrackedPaths"`
	UnstagedChanges []string `json:"unstagedChanges" yaml:"unstagedChanges"`
	StagedChanges   []string `json:"stagedChanges" yaml:"stagedChanges"`
}

// Changed reports whether path has staged or unstaged modifications.
func (s RepositorySnapshot) Changed(path string) bool {
	for _, p := range s.UnstagedChanges {
		if p == path {
			return true
		}
	}
	for _, p := range s.StagedChanges {
		if p == path {
			return true
		}
	}
	return false
}
