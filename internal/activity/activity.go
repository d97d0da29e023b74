package activity

import (
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Entity is a file observed by an activity.
type Entity struct {
	Path string `yaml:"path" json:"path"`
	// Checksum is the content hash at the time of the activity, empty if unknown
	Checksum string `yaml:"checksum,omitempty" json:"checksum,omitempty"`
}

// Usage is an entity read by an activity, bound to the named input.
type Usage struct {
	Entity `yaml:",inline"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
}

// Generation is an entity written by an activity, bound to the named output.
type Generation struct {
	Entity `yaml:",inline"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
}

// Activity is one execution of a plan.
type Activity struct {
	ID          string            `yaml:"id" json:"id"`
	PlanID      string            `yaml:"planId" json:"planId"`
	PlanName    string            `yaml:"planName,omitempty" json:"planName,omitempty"`
	StartedAt   time.Time         `yaml:"startedAt" json:"startedAt"`
	EndedAt     time.Time         `yaml:"endedAt" json:"endedAt"`
	Usages      []Usage           `yaml:"usages,omitempty" json:"usages,omitempty"`
	Generations []Generation      `yaml:"generations,omitempty" json:"generations,omitempty"`
	Parameters  map[string]string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	ExitCode    int               `yaml:"exitCode" json:"exitCode"`
}

// New creates an activity with a random id.
func New(planID, planName string, startedAt time.Time) *Activity {
	return &Activity{
		ID:        NewID(),
		PlanID:    planID,
		PlanName:  planName,
		StartedAt: startedAt.UTC(),
	}
}

// NewID returns a random activity id.
func NewID() string {
	return uuid.NewString()
}

// Uses reports whether the activity read path.
func (a *Activity) Uses(path string) (Usage, bool) {
	for _, u := range a.Usages {
		if u.Path == path {
			return u, true
		}
	}
	return Usage{}, false
}

// Generated reports whether the activity wrote path.
func (a *Activity) Generated(path string) (Generation, bool) {
	for _, g := range a.Generations {
		if g.Path == path {
			return g, true
		}
	}
	return Generation{}, false
}

// GeneratedPaths returns the paths written by the activity in declaration order.
func (a *Activity) GeneratedPaths() []string {
	paths := make([]string, 0, len(a.Generations))
	for _, g := range a.Generations {
		paths = append(paths, g.Path)
	}
	return paths
}

// Clone returns a deep copy.
func (a *Activity) Clone() *Activity {
	c := *a
	c.Usages = slices.Clone(a.Usages)
	c.Generations = slices.Clone(a.Generations)
	if a.Parameters != nil {
		c.Parameters = make(map[string]string, len(a.Parameters))
		for k, v := range a.Parameters {
			c.Parameters[k] = v
		}
	}
	return &c
}

// Collection groups the activities of one workflow-file execution.
type Collection struct {
	ID          string    `yaml:"id" json:"id"`
	PlanID      string    `yaml:"planId" json:"planId"`
	StartedAt   time.Time `yaml:"startedAt" json:"startedAt"`
	ActivityIDs []string  `yaml:"activityIds" json:"activityIds"`
}

// NewCollection creates an empty collection for the composite plan planID.
func NewCollection(planID string, startedAt time.Time) *Collection {
	return &Collection{ID: NewID(), PlanID: planID, StartedAt: startedAt.UTC()}
}

// SortByStart orders activities by start time, then id.
func SortByStart(acts []*Activity) {
	sort.SliceStable(acts, func(i, j int) bool {
		if !acts[i].StartedAt.Equal(acts[j].StartedAt) {
			return acts[i].StartedAt.Before(acts[j].StartedAt)
		}
		return acts[i].ID < acts[j].ID
	})
}
