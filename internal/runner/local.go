package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/plan"
	"github.com/giantswarm/lineage/internal/status"
	"github.com/giantswarm/lineage/pkg/logging"
)

const localSubsystem = "Runner"

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// LocalBackend runs plans as child processes.
type LocalBackend struct {
	hasher status.Hasher
	now    func() time.Time
}

// NewLocalBackend creates a local backend. hasher may be nil, in which case
// no checksums are recorded; a nil now means time.Now.
func NewLocalBackend(hasher status.Hasher, now func() time.Time) *LocalBackend {
	if now == nil {
		now = time.Now
	}
	return &LocalBackend{hasher: hasher, now: now}
}

func (b *LocalBackend) Name() string { return string(BackendTypeLocal) }

// Execute runs the plans one after the other and stops at the first plan that
// fails. The activities of every plan that ran are returned with the error.
func (b *LocalBackend) Execute(ctx context.Context, job Job) (*Result, error) {
	res := &Result{}
	if len(job.Plans) == 0 {
		return res, nil
	}
	res.Collection = activity.NewCollection(job.PlanID, b.now())

	for i, p := range job.Plans {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		logging.Info(localSubsystem, "[%d/%d] %s", i+1, len(job.Plans), p.Name)

		act, err := b.run(ctx, p, job)
		if act != nil {
			res.Activities = append(res.Activities, act)
			res.Collection.ActivityIDs = append(res.Collection.ActivityIDs, act.ID)
		}
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (b *LocalBackend) run(ctx context.Context, p *plan.Plan, job Job) (*activity.Activity, error) {
	argv, redirects, err := p.ToArgv()
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("plan %s has an empty command", p.Name)
	}

	for _, out := range p.Outputs {
		if out.CreateFolder {
			dir := filepath.Dir(b.resolve(job.Dir, out.Path))
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create folder %s for output %s: %w", dir, out.Name, err)
			}
		}
	}

	act := activity.New(p.ID, p.Name, b.now())
	if len(p.Parameters) > 0 {
		act.Parameters = make(map[string]string, len(p.Parameters))
		for _, param := range p.Parameters {
			act.Parameters[param.Name] = param.Value
		}
	}
	for _, in := range p.Inputs {
		act.Usages = append(act.Usages, activity.Usage{
			Entity: activity.Entity{Path: in.Path, Checksum: b.checksum(in.Path)},
			Name:   in.Name,
		})
	}

	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	cmd := execCommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = job.Dir
	cmd.Stdout = writerOrDiscard(job.Stdout)
	cmd.Stderr = writerOrDiscard(job.Stderr)

	var files []*os.File
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	if redirects.Stdin != "" {
		f, err := os.Open(b.resolve(job.Dir, redirects.Stdin))
		if err != nil {
			return nil, fmt.Errorf("failed to open stdin of %s: %w", p.Name, err)
		}
		files = append(files, f)
		cmd.Stdin = f
	}
	if redirects.Stdout != "" {
		f, err := os.Create(b.resolve(job.Dir, redirects.Stdout))
		if err != nil {
			return nil, fmt.Errorf("failed to open stdout of %s: %w", p.Name, err)
		}
		files = append(files, f)
		cmd.Stdout = f
	}
	if redirects.Stderr != "" {
		f, err := os.Create(b.resolve(job.Dir, redirects.Stderr))
		if err != nil {
			return nil, fmt.Errorf("failed to open stderr of %s: %w", p.Name, err)
		}
		files = append(files, f)
		cmd.Stderr = f
	}

	logging.Debug(localSubsystem, "Executing %v", argv)
	runErr := cmd.Run()
	act.EndedAt = b.now().UTC()

	if runCtx.Err() != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return act, fmt.Errorf("plan %s timed out after %s", p.Name, job.Timeout)
		}
		return act, runCtx.Err()
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		act.ExitCode = 0
	case errors.As(runErr, &exitErr):
		act.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("failed to start plan %s: %w", p.Name, runErr)
	}

	// flush redirected outputs before hashing them
	for _, f := range files {
		_ = f.Close()
	}
	files = nil

	for _, out := range p.Outputs {
		act.Generations = append(act.Generations, activity.Generation{
			Entity: activity.Entity{Path: out.Path, Checksum: b.checksum(out.Path)},
			Name:   out.Name,
		})
	}

	if !p.IsSuccess(act.ExitCode) {
		return act, &ExitError{Plan: p.Name, Code: act.ExitCode}
	}
	logging.Debug(localSubsystem, "Plan %s finished in %s", p.Name, act.EndedAt.Sub(act.StartedAt))
	return act, nil
}

func (b *LocalBackend) resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (b *LocalBackend) checksum(path string) string {
	if b.hasher == nil {
		return ""
	}
	sum, err := b.hasher.Hash(path)
	if err != nil {
		logging.Debug(localSubsystem, "No checksum for %s: %v", path, err)
		return ""
	}
	return sum
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
