package status

import (
	"testing"
	"time"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type historyBuilder struct {
	acts []*activity.Activity
	next time.Time
}

func (h *historyBuilder) run(name string, uses, generates []string) *activity.Activity {
	if h.next.IsZero() {
		h.next = t0
	}
	a := &activity.Activity{ID: name, PlanID: name, StartedAt: h.next, EndedAt: h.next.Add(time.Second)}
	for _, p := range uses {
		a.Usages = append(a.Usages, activity.Usage{Entity: activity.Entity{Path: p}})
	}
	for _, p := range generates {
		a.Generations = append(a.Generations, activity.Generation{Entity: activity.Entity{Path: p}})
	}
	h.next = h.next.Add(time.Minute)
	h.acts = append(h.acts, a)
	return a
}

func TestGetStatus_SingleActivity(t *testing.T) {
	h := &historyBuilder{}
	a := h.run("head", []string{"models.csv"}, []string{"intermediate"})

	st := GetStatus([]Change{{ActivityID: a.ID, Path: "models.csv"}}, nil, h.acts, nil)

	assert.Equal(t, map[string][]string{"intermediate": {"models.csv"}}, st.OutdatedOutputs)
	assert.Empty(t, st.OutdatedActivities)
	assert.Equal(t, []string{"models.csv"}, st.ModifiedInputs)
	assert.Empty(t, st.DeletedInputs)
	assert.False(t, st.UpToDate())
}

func TestGetStatus_Downstream(t *testing.T) {
	h := &historyBuilder{}
	head := h.run("head", []string{"models.csv"}, []string{"intermediate"})
	h.run("count", []string{"intermediate"}, []string{"counts.txt"})
	h.run("plot", []string{"counts.txt"}, nil)
	h.run("unrelated", []string{"other.csv"}, []string{"other.out"})

	st := GetStatus([]Change{{ActivityID: head.ID, Path: "models.csv"}}, nil, h.acts, nil)

	assert.Equal(t, map[string][]string{
		"intermediate": {"models.csv"},
		"counts.txt":   {"models.csv"},
	}, st.OutdatedOutputs)
	assert.Equal(t, map[string][]string{"plot": {"models.csv"}}, st.OutdatedActivities)
}

func TestGetStatus_OnlyNewestEarlierGenerator(t *testing.T) {
	h := &historyBuilder{}
	first := h.run("gen-1", []string{"seed"}, []string{"data.csv"})
	h.run("gen-2", []string{"other-seed"}, []string{"data.csv"})
	h.run("consume", []string{"data.csv"}, []string{"report.txt"})

	// consume read the second generation, so a change upstream of the
	// first one does not reach it
	st := GetStatus([]Change{{ActivityID: first.ID, Path: "seed"}}, nil, h.acts, nil)
	assert.Equal(t, map[string][]string{"data.csv": {"seed"}}, st.OutdatedOutputs)
}

func TestGetStatus_ChecksumMismatchBreaksEdge(t *testing.T) {
	h := &historyBuilder{}
	gen := h.run("gen", []string{"seed"}, []string{"data.csv"})
	gen.Generations[0].Checksum = "aaa"
	use := h.run("use", []string{"data.csv"}, []string{"out"})
	use.Usages[0].Checksum = "bbb"

	st := GetStatus([]Change{{ActivityID: gen.ID, Path: "seed"}}, nil, h.acts, nil)
	assert.Equal(t, map[string][]string{"data.csv": {"seed"}}, st.OutdatedOutputs)
}

func TestGetStatus_Filter(t *testing.T) {
	h := &historyBuilder{}
	a := h.run("split", []string{"raw.csv"}, []string{"out/a.csv", "out/b.txt", "logs/run.log"})
	h.run("notify", []string{"logs/run.log"}, nil)

	filter, err := NewPathFilter("out/**/*.csv", "raw.csv")
	require.NoError(t, err)

	st := GetStatus(
		[]Change{{ActivityID: a.ID, Path: "raw.csv"}},
		[]Change{{ActivityID: a.ID, Path: "raw.csv"}, {ActivityID: a.ID, Path: "elsewhere.csv"}},
		h.acts, filter,
	)
	assert.Equal(t, map[string][]string{"out/a.csv": {"raw.csv"}}, st.OutdatedOutputs)
	assert.Empty(t, st.OutdatedActivities)
	assert.Equal(t, []string{"raw.csv"}, st.DeletedInputs)
}

func TestGetStatus_UnknownActivity(t *testing.T) {
	st := GetStatus([]Change{{ActivityID: "ghost", Path: "x"}}, nil, nil, nil)
	assert.True(t, st.UpToDate())
}

func TestPathFilter(t *testing.T) {
	f, err := NewPathFilter("data/raw", "**/*.parquet")
	require.NoError(t, err)

	assert.True(t, f.Match("data/raw/a.csv"))
	assert.True(t, f.Match("./data/raw"))
	assert.True(t, f.Match("x/y/z.parquet"))
	assert.False(t, f.Match("data/rawish.csv"))
	assert.False(t, f.Match("data/clean/a.csv"))

	var none *PathFilter
	assert.True(t, none.Match("anything"))

	_, err = NewPathFilter("data/[")
	assert.Error(t, err)
}

type fakeHasher map[string]string

func (h fakeHasher) Hash(path string) (string, error) { return h[path], nil }

func TestDetectChanges(t *testing.T) {
	h := &historyBuilder{}
	h.run("old", []string{"a.csv"}, nil)
	recent := h.run("recent", []string{"a.csv", "b.csv", "c.csv", "gone.csv"}, nil)
	recent.Usages[2].Checksum = "c-old"

	existing := map[string]bool{"a.csv": true, "b.csv": true, "c.csv": true}
	checker := api.PathCheckerFunc(func(p string) (api.PathInfo, bool) { return api.PathInfo{}, existing[p] })
	snapshot := api.RepositorySnapshot{UnstagedChanges: []string{"a.csv"}}

	modified, deleted, err := DetectChanges(h.acts, snapshot, checker, fakeHasher{"c.csv": "c-new"})
	require.NoError(t, err)

	assert.Equal(t, []Change{{ActivityID: "recent", Path: "a.csv"}, {ActivityID: "recent", Path: "c.csv"}}, modified)
	assert.Equal(t, []Change{{ActivityID: "recent", Path: "gone.csv"}}, deleted)
}

func TestCheck(t *testing.T) {
	h := &historyBuilder{}
	h.run("head", []string{"models.csv"}, []string{"intermediate"})
	h.run("count", []string{"intermediate"}, []string{"counts.txt"})

	everything := api.PathCheckerFunc(func(string) (api.PathInfo, bool) { return api.PathInfo{}, true })

	st, err := Check(h.acts, api.RepositorySnapshot{}, everything, nil, nil)
	require.NoError(t, err)
	assert.True(t, st.UpToDate())

	st, err = Check(h.acts, api.RepositorySnapshot{StagedChanges: []string{"models.csv"}}, everything, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"intermediate": {"models.csv"},
		"counts.txt":   {"models.csv"},
	}, st.OutdatedOutputs)
}
