package repository

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/pkg/logging"

	"github.com/go-git/go-git/v5"
)

// Repository is an opened git working tree.
type Repository struct {
	repo *git.Repository
	root string
}

// Open opens the repository containing path, searching parent directories.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree of %s: %w", path, err)
	}
	return &Repository{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the worktree root directory.
func (r *Repository) Root() string {
	return r.root
}

// Rel converts path to a slash-separated path relative to the root.
func (r *Repository) Rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		path = abs
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside of repository %s", path, r.root)
	}
	return filepath.ToSlash(rel), nil
}

// Snapshot reads the index and the worktree status.
func (r *Repository) Snapshot() (api.RepositorySnapshot, error) {
	var snap api.RepositorySnapshot

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return snap, fmt.Errorf("failed to read git index: %w", err)
	}
	for _, e := range idx.Entries {
		snap.TrackedPaths = append(snap.TrackedPaths, e.Name)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return snap, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return snap, fmt.Errorf("failed to read worktree status: %w", err)
	}
	for path, fs := range status {
		switch {
		case fs.Worktree == git.Untracked:
			snap.UntrackedPaths = append(snap.UntrackedPaths, path)
			continue
		case fs.Worktree != git.Unmodified:
			snap.UnstagedChanges = append(snap.UnstagedChanges, path)
		}
		if fs.Staging != git.Unmodified && fs.Staging != git.Untracked {
			snap.StagedChanges = append(snap.StagedChanges, path)
		}
	}

	sort.Strings(snap.TrackedPaths)
	sort.Strings(snap.UntrackedPaths)
	sort.Strings(snap.UnstagedChanges)
	sort.Strings(snap.StagedChanges)

	logging.Debug("Repository", "Snapshot of %s: %d tracked, %d untracked, %d unstaged, %d staged",
		r.root, len(snap.TrackedPaths), len(snap.UntrackedPaths), len(snap.UnstagedChanges), len(snap.StagedChanges))
	return snap, nil
}
