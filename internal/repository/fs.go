package repository

import (
	"fmt"
	"path/filepath"

	"github.com/giantswarm/lineage/internal/api"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/afero"
)

// FSChecker is an api.PathChecker over an afero filesystem. Relative
// candidates are resolved against base.
type FSChecker struct {
	fs   afero.Fs
	base string
}

// NewFSChecker creates a checker. An empty base resolves candidates as given.
func NewFSChecker(fs afero.Fs, base string) *FSChecker {
	return &FSChecker{fs: fs, base: base}
}

func (c *FSChecker) resolve(candidate string) string {
	if c.base == "" || filepath.IsAbs(candidate) {
		return candidate
	}
	return filepath.Join(c.base, candidate)
}

// Stat implements api.PathChecker.
func (c *FSChecker) Stat(candidate string) (api.PathInfo, bool) {
	if candidate == "" {
		return api.PathInfo{}, false
	}
	fi, err := c.fs.Stat(c.resolve(candidate))
	if err != nil {
		return api.PathInfo{}, false
	}
	return api.PathInfo{IsDir: fi.IsDir()}, true
}

// BlobHasher computes git blob hashes of files, the checksum recorded on
// usages and generations.
type BlobHasher struct {
	checker *FSChecker
}

// NewBlobHasher creates a hasher reading through fs, relative to base.
func NewBlobHasher(fs afero.Fs, base string) *BlobHasher {
	return &BlobHasher{checker: NewFSChecker(fs, base)}
}

// Hash returns the hex blob hash of the file at path.
func (h *BlobHasher) Hash(path string) (string, error) {
	full := h.checker.resolve(path)
	info, ok := h.checker.Stat(path)
	if !ok {
		return "", fmt.Errorf("%s does not exist", path)
	}
	if info.IsDir {
		return "", fmt.Errorf("%s is a directory", path)
	}
	data, err := afero.ReadFile(h.checker.fs, full)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return plumbing.ComputeHash(plumbing.BlobObject, data).String(), nil
}
