package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/config"
	"github.com/giantswarm/lineage/internal/formatting"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/internal/runner"
)

func newServices(t *testing.T, dir string) *Services {
	t.Helper()
	cfg := config.GetDefaultConfig()
	services, err := InitializeServices(&Config{
		WorkDir:       dir,
		ConfigPath:    filepath.Join(dir, config.DefaultStateDir),
		LineageConfig: &cfg,
	})
	require.NoError(t, err)
	return services
}

func TestInitializeServices(t *testing.T) {
	dir := t.TempDir()
	services := newServices(t, dir)

	assert.Equal(t, dir, services.Root)
	assert.NotNil(t, services.Plans)
	assert.NotNil(t, services.Activities)
	assert.NotNil(t, services.Loader)
	assert.Nil(t, services.Repository)

	snap, err := services.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, api.RepositorySnapshot{}, snap)

	// plans survive a restart
	p := plan.NewPlan("sort", "sort", plan.Arguments{})
	require.NoError(t, services.Plans.Add(p))
	again := newServices(t, dir)
	_, ok := again.Plans.GetByID(p.ID)
	assert.True(t, ok)
}

func TestServices_NewBackend(t *testing.T) {
	services := newServices(t, t.TempDir())

	b, err := services.NewBackend("")
	require.NoError(t, err)
	assert.Equal(t, string(runner.BackendTypeLocal), b.Name())

	b, err = services.NewBackend("script")
	require.NoError(t, err)
	assert.Equal(t, string(runner.BackendTypeScript), b.Name())

	_, err = services.NewBackend("docker")
	assert.Error(t, err)
}

func TestServices_MCPDependencies(t *testing.T) {
	services := newServices(t, t.TempDir())

	deps := services.MCPDependencies()
	assert.Same(t, services.Loader, deps.Loader)
	assert.True(t, deps.VirtualLinks)
	assert.NotNil(t, deps.Snapshot)
}

func TestServices_SnapshotInSubdirectory(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	project := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(filepath.Join(project, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "data", "a.csv"), []byte("1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("x\n"), 0o644))
	_, err = wt.Add(".")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(project, "data", "a.csv"), []byte("2\n"), 0o644))

	services := newServices(t, project)
	require.NotNil(t, services.Repository)

	snap, err := services.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{"data/a.csv"}, snap.TrackedPaths)
	assert.Equal(t, []string{"data/a.csv"}, snap.UnstagedChanges)
}

func TestRebaseSnapshot(t *testing.T) {
	snap := api.RepositorySnapshot{
		TrackedPaths:    []string{"README", "sub/a.csv", "subway/b.csv"},
		UnstagedChanges: []string{"sub/a.csv"},
	}

	rebased := rebaseSnapshot(snap, "/repo", "/repo/sub")
	assert.Equal(t, []string{"a.csv"}, rebased.TrackedPaths)
	assert.Equal(t, []string{"a.csv"}, rebased.UnstagedChanges)
	assert.Empty(t, rebased.StagedChanges)

	assert.Equal(t, snap, rebaseSnapshot(snap, "/repo", "/repo/"))
}

func TestServices_ResolvePlans(t *testing.T) {
	services := newServices(t, t.TempDir())

	build := func(n string) plan.AbstractPlan {
		head := plan.NewWorkflowFilePlan("wf.yaml", "wf.head", "head", plan.Arguments{
			Parameters: []plan.Parameter{{Argument: plan.Argument{Name: "n", Position: 1, Prefix: "-n "}, Value: n}},
		})
		count := plan.NewWorkflowFilePlan("wf.yaml", "wf.count", "wc", plan.Arguments{})
		return plan.NewWorkflowFileCompositePlan("wf.yaml", "wf", []plan.AbstractPlan{head, count})
	}
	actions := func(ds []formatting.Decision) []formatting.Action {
		var res []formatting.Action
		for _, d := range ds {
			res = append(res, d.Action)
		}
		return res
	}

	// dry run leaves the store untouched
	_, decisions, err := services.ResolvePlans(build("10"), false)
	require.NoError(t, err)
	assert.Equal(t, []formatting.Action{formatting.ActionNew, formatting.ActionNew, formatting.ActionNew}, actions(decisions))
	assert.Empty(t, services.Plans.List())

	first, _, err := services.ResolvePlans(build("10"), true)
	require.NoError(t, err)
	assert.Len(t, services.Plans.List(), 3)

	again, decisions, err := services.ResolvePlans(build("10"), true)
	require.NoError(t, err)
	assert.Equal(t, first.GetID(), again.GetID())
	assert.Equal(t, []formatting.Action{formatting.ActionReused, formatting.ActionReused, formatting.ActionReused}, actions(decisions))

	changed, decisions, err := services.ResolvePlans(build("20"), true)
	require.NoError(t, err)
	assert.Equal(t, []formatting.Action{formatting.ActionNewVersion, formatting.ActionReused, formatting.ActionNewVersion}, actions(decisions))
	assert.Equal(t, first.GetID(), changed.Meta().DerivedFrom)
	assert.Equal(t, "wf", decisions[2].Name)
}
