package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/config"
	"github.com/giantswarm/lineage/internal/formatting"
	"github.com/giantswarm/lineage/internal/mcpserver"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/internal/repository"
	"github.com/giantswarm/lineage/internal/runner"
	"github.com/giantswarm/lineage/internal/workflow"
	"github.com/giantswarm/lineage/pkg/logging"
)

// Services holds all initialized services used by the commands.
type Services struct {
	// Config is the loaded configuration with defaults applied
	Config config.LineageConfig

	// Root is the project root every recorded path is relative to
	Root string

	// Storage is the entity storage under the state directory
	Storage *config.Storage

	Plans      *plan.FileStore
	Activities activity.Store
	Loader     *workflow.Loader

	Checker *repository.FSChecker
	Hasher  *repository.BlobHasher

	// Repository is nil when Root is not inside a git repository
	Repository *repository.Repository

	// Now is the clock used for new plans, tombstones and activities
	Now plan.TimeSource
}

// InitializeServices creates the stores and the filesystem services for the
// project rooted at cfg.WorkDir.
func InitializeServices(cfg *Config) (*Services, error) {
	lineageCfg := config.GetDefaultConfig()
	if cfg.LineageConfig != nil {
		lineageCfg = *cfg.LineageConfig
	}

	root, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %s: %w", cfg.WorkDir, err)
	}

	stateDir := config.ResolveStateDir(cfg.ConfigPath, lineageCfg)
	storage := config.NewStorageWithPath(stateDir)

	plans, err := plan.NewFileStore(storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan store in %s: %w", stateDir, err)
	}

	fs := afero.NewOsFs()
	services := &Services{
		Config:     lineageCfg,
		Root:       root,
		Storage:    storage,
		Plans:      plans,
		Activities: activity.NewFileStore(storage),
		Loader:     workflow.NewLoader(nil, fs),
		Checker:    repository.NewFSChecker(fs, root),
		Hasher:     repository.NewBlobHasher(fs, root),
		Now:        func() time.Time { return time.Now().UTC() },
	}

	repo, err := repository.Open(root)
	if err != nil {
		logging.Debug("Services", "No git repository at %s: %v", root, err)
	} else {
		services.Repository = repo
	}

	logging.Debug("Services", "Initialized services for %s (state in %s)", root, stateDir)
	return services, nil
}

// Snapshot returns the repository state with paths relative to Root. Outside
// of a git repository the snapshot is empty.
func (s *Services) Snapshot() (api.RepositorySnapshot, error) {
	if s.Repository == nil {
		return api.RepositorySnapshot{}, nil
	}
	snap, err := s.Repository.Snapshot()
	if err != nil {
		return api.RepositorySnapshot{}, err
	}
	return rebaseSnapshot(snap, s.Repository.Root(), s.Root), nil
}

// NewBackend creates the execution backend of the given type, the
// configured provider when empty.
func (s *Services) NewBackend(provider string) (runner.Backend, error) {
	if provider == "" {
		provider = s.Config.Provider
	}
	return runner.NewBackend(provider, runner.Options{
		Hasher: s.Hasher,
		Now:    s.Now,
	})
}

// ResolvePlans resolves p against the plan store and reports, for every leaf
// and then p itself, whether a stored version was reused. New versions are
// written to the store when persist is set.
func (s *Services) ResolvePlans(p plan.AbstractPlan, persist bool) (plan.AbstractPlan, []formatting.Decision, error) {
	resolved, err := plan.Resolve(p, s.Plans, plan.NewSequence())
	if err != nil {
		return nil, nil, err
	}

	var decisions []formatting.Decision
	decide := func(x plan.AbstractPlan) {
		meta := x.Meta()
		d := formatting.Decision{Name: meta.Name, Kind: string(meta.Kind), ID: meta.ID, DerivedFrom: meta.DerivedFrom}
		switch _, stored := s.Plans.GetByID(meta.ID); {
		case stored:
			d.Action = formatting.ActionReused
		case meta.DerivedFrom != "":
			d.Action = formatting.ActionNewVersion
		default:
			d.Action = formatting.ActionNew
		}
		decisions = append(decisions, d)
	}
	if resolved.GetKind().IsComposite() {
		for _, leaf := range resolved.Leaves() {
			decide(leaf)
		}
	}
	decide(resolved)

	if persist {
		if err := s.Plans.Add(resolved); err != nil {
			return nil, nil, fmt.Errorf("failed to store plan %s: %w", resolved.GetName(), err)
		}
	}
	return resolved, decisions, nil
}

// MCPDependencies returns the services the MCP tools need.
func (s *Services) MCPDependencies() mcpserver.Dependencies {
	return mcpserver.Dependencies{
		Loader:       s.Loader,
		Activities:   s.Activities,
		Checker:      s.Checker,
		Hasher:       s.Hasher,
		Snapshot:     s.Snapshot,
		VirtualLinks: s.Config.VirtualLinks,
	}
}

// rebaseSnapshot converts paths relative to repoRoot into paths relative to
// root and drops those outside of root.
func rebaseSnapshot(snap api.RepositorySnapshot, repoRoot, root string) api.RepositorySnapshot {
	if filepath.Clean(repoRoot) == filepath.Clean(root) {
		return snap
	}
	rebase := func(paths []string) []string {
		var res []string
		for _, p := range paths {
			rel, err := filepath.Rel(root, filepath.Join(repoRoot, filepath.FromSlash(p)))
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				continue
			}
			res = append(res, filepath.ToSlash(rel))
		}
		return res
	}
	return api.RepositorySnapshot{
		TrackedPaths:    rebase(snap.TrackedPaths),
		UntrackedPaths:  rebase(snap.UntrackedPaths),
		UnstagedChanges: rebase(snap.UnstagedChanges),
		StagedChanges:   rebase(snap.StagedChanges),
	}
}
