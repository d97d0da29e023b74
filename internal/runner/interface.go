package runner

import (
	"context"
	"io"
	"time"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/plan"
)

// Backend defines the interface for plan execution backends
type Backend interface {
	// Name returns the backend name used on the command line
	Name() string

	// Execute runs the plans of job in the given order
	Execute(ctx context.Context, job Job) (*Result, error)
}

// Job holds the plans to execute and where to run them
type Job struct {
	Name   string       // Workflow or composite name
	PlanID string       // Id of the composite plan, recorded on the collection
	Plans  []*plan.Plan // Leaf plans in execution order
	Dir    string       // Working directory, empty for the current one

	Timeout time.Duration // Per-plan timeout, 0 for none

	Stdout io.Writer // Receives stdout of plans without a stdout mapping
	Stderr io.Writer // Receives stderr of plans without a stderr mapping
}

// Result is what a backend produced.
type Result struct {
	// Activities holds one activity per plan that ran, in order
	Activities []*activity.Activity
	// Collection groups the activities, nil when nothing ran
	Collection *activity.Collection
}
