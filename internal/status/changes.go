package status

import (
	"fmt"
	"sort"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/api"
)

// Hasher computes the checksum of a path in the same form activities record.
type Hasher interface {
	Hash(path string) (string, error)
}

// DetectChanges compares the newest usage of every path in history with the
// working tree. A path is deleted when checker no longer finds it, and
// modified when the snapshot lists it as changed or when its checksum
// differs from the recorded one. hasher may be nil.
func DetectChanges(history []*activity.Activity, snapshot api.RepositorySnapshot, checker api.PathChecker, hasher Hasher) (modified, deleted []Change, err error) {
	type lastUse struct {
		activity *activity.Activity
		usage    activity.Usage
	}

	sorted := append([]*activity.Activity(nil), history...)
	activity.SortByStart(sorted)

	latest := make(map[string]lastUse)
	for _, a := range sorted {
		for _, u := range a.Usages {
			latest[u.Path] = lastUse{activity: a, usage: u}
		}
	}

	paths := make([]string, 0, len(latest))
	for p := range latest {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		use := latest[p]
		change := Change{ActivityID: use.activity.ID, Path: p}

		if _, exists := checker.Stat(p); !exists {
			deleted = append(deleted, change)
			continue
		}
		if snapshot.Changed(p) {
			modified = append(modified, change)
			continue
		}
		if hasher == nil || use.usage.Checksum == "" {
			continue
		}
		sum, err := hasher.Hash(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash %s: %w", p, err)
		}
		if sum != use.usage.Checksum {
			modified = append(modified, change)
		}
	}
	return modified, deleted, nil
}

// Check detects the changes made to the paths read by history and returns
// the resulting status report.
func Check(history []*activity.Activity, snapshot api.RepositorySnapshot, checker api.PathChecker, hasher Hasher, filter *PathFilter) (*Status, error) {
	modified, deleted, err := DetectChanges(history, snapshot, checker, hasher)
	if err != nil {
		return nil, err
	}
	return GetStatus(modified, deleted, history, filter), nil
}
