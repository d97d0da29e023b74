package workflow

import (
	"slices"

	"github.com/giantswarm/lineage/internal/plan"
)

// ToPlans converts a loaded file into its composite plan. Each step becomes a
// workflow-file plan identified by (path, public name), and the file becomes
// a workflow-file composite identified by (path, workflow name).
func (f *File) ToPlans() *plan.CompositePlan {
	children := make([]plan.AbstractPlan, 0, len(f.Steps))
	for _, step := range f.Steps {
		p := plan.NewWorkflowFilePlan(f.Path, step.PublicName(), step.Command, step.Arguments.Clone())
		p.Description = step.Description
		p.Keywords = slices.Clone(step.Keywords)
		if len(step.SuccessCodes) > 0 {
			p.SuccessCodes = slices.Clone(step.SuccessCodes)
		}
		children = append(children, p)
	}

	c := plan.NewWorkflowFileCompositePlan(f.Path, f.Name, children)
	c.Description = f.Description
	c.Keywords = slices.Clone(f.Keywords)
	return c
}
