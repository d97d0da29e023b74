package status

import (
	"slices"
	"sort"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/pkg/logging"
)

// Change is a path read by an activity that has been modified or deleted
// since.
type Change struct {
	ActivityID string `json:"activityId" yaml:"activityId"`
	Path       string `json:"path" yaml:"path"`
}

// Status is the staleness report.
type Status struct {
	// OutdatedOutputs maps each stale output path to the modified inputs
	// that caused it
	OutdatedOutputs map[string][]string `json:"outdatedOutputs" yaml:"outdatedOutputs"`
	// OutdatedActivities maps activities without generations that read a
	// modified path, directly or downstream, to those modified paths
	OutdatedActivities map[string][]string `json:"outdatedActivities" yaml:"outdatedActivities"`
	ModifiedInputs     []string            `json:"modifiedInputs" yaml:"modifiedInputs"`
	DeletedInputs      []string            `json:"deletedInputs" yaml:"deletedInputs"`
}

// UpToDate reports whether nothing is stale.
func (s *Status) UpToDate() bool {
	return len(s.OutdatedOutputs) == 0 && len(s.OutdatedActivities) == 0 &&
		len(s.ModifiedInputs) == 0 && len(s.DeletedInputs) == 0
}

// GetStatus computes the staleness report of history for the given change
// sets.
func GetStatus(modified, deleted []Change, history []*activity.Activity, filter *PathFilter) *Status {
	st := &Status{
		OutdatedOutputs:    make(map[string][]string),
		OutdatedActivities: make(map[string][]string),
	}

	byID := make(map[string]*activity.Activity, len(history))
	for _, a := range history {
		byID[a.ID] = a
	}
	consumers := consumerEdges(history)

	outputs := make(map[string]map[string]bool)
	silent := make(map[string]map[string]bool)
	modifiedInputs := make(map[string]bool)

	for _, change := range modified {
		start, ok := byID[change.ActivityID]
		if !ok {
			logging.Debug("Status", "Ignoring change of %s by unknown activity %s", change.Path, change.ActivityID)
			continue
		}
		modifiedInputs[change.Path] = true

		for _, a := range reachable(start, consumers, byID) {
			if len(a.Generations) == 0 {
				if !usesMatching(a, filter) {
					continue
				}
				addTo(silent, a.ID, change.Path)
				continue
			}
			for _, g := range a.Generations {
				if filter.Match(g.Path) {
					addTo(outputs, g.Path, change.Path)
				}
			}
		}
	}

	for path, causes := range outputs {
		st.OutdatedOutputs[path] = sortedKeys(causes)
	}
	for id, causes := range silent {
		st.OutdatedActivities[id] = sortedKeys(causes)
	}
	st.ModifiedInputs = sortedKeys(modifiedInputs)

	deletedInputs := make(map[string]bool)
	for _, change := range deleted {
		if filter.Match(change.Path) {
			deletedInputs[change.Path] = true
		}
	}
	st.DeletedInputs = sortedKeys(deletedInputs)

	logging.Debug("Status", "%d outdated outputs, %d outdated activities, %d modified and %d deleted inputs",
		len(st.OutdatedOutputs), len(st.OutdatedActivities), len(st.ModifiedInputs), len(st.DeletedInputs))
	return st
}

// consumerEdges links each activity to the activities that consumed one of
// its generations. A usage consumes the newest generation of its path that
// ended before the consumer started, provided the checksums agree whenever
// both are recorded.
func consumerEdges(history []*activity.Activity) map[string][]string {
	edges := make(map[string][]string)
	for _, consumer := range history {
		for _, u := range consumer.Usages {
			var producer *activity.Activity
			var generated activity.Generation
			for _, candidate := range history {
				if candidate.ID == consumer.ID || candidate.EndedAt.After(consumer.StartedAt) {
					continue
				}
				g, ok := candidate.Generated(u.Path)
				if !ok {
					continue
				}
				if producer == nil || candidate.EndedAt.After(producer.EndedAt) {
					producer, generated = candidate, g
				}
			}
			if producer == nil {
				continue
			}
			if u.Checksum != "" && generated.Checksum != "" && u.Checksum != generated.Checksum {
				continue
			}
			if !slices.Contains(edges[producer.ID], consumer.ID) {
				edges[producer.ID] = append(edges[producer.ID], consumer.ID)
			}
		}
	}
	return edges
}

// reachable returns start and every activity downstream of it.
func reachable(start *activity.Activity, consumers map[string][]string, byID map[string]*activity.Activity) []*activity.Activity {
	seen := map[string]bool{start.ID: true}
	res := []*activity.Activity{start}
	for i := 0; i < len(res); i++ {
		for _, id := range consumers[res[i].ID] {
			if seen[id] {
				continue
			}
			seen[id] = true
			res = append(res, byID[id])
		}
	}
	return res
}

func usesMatching(a *activity.Activity, filter *PathFilter) bool {
	if filter == nil || len(filter.patterns) == 0 {
		return true
	}
	for _, u := range a.Usages {
		if filter.Match(u.Path) {
			return true
		}
	}
	return false
}

func addTo(m map[string]map[string]bool, key, value string) {
	if m[key] == nil {
		m[key] = make(map[string]bool)
	}
	m[key][value] = true
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
