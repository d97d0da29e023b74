package workflow

import (
	"slices"

	"github.com/giantswarm/lineage/internal/plan"
)

// Reserved argument names, used by the aggregate references.
var reservedNames = []string{"inputs", "outputs", "parameters"}

// Step is one declared step of a workflow file.
type Step struct {
	// Workflow is the name of the workflow the step belongs to
	Workflow    string
	Name        string
	Description string
	Keywords    []string
	// Command is the base command once the step is bound; before that it
	// equals OriginalCommand
	Command         string
	OriginalCommand string
	plan.Arguments
	SuccessCodes []int
	// Line is the line of the step in its file, 0 if unknown
	Line int
}

// PublicName returns <workflow-name>.<step-name>.
func (s *Step) PublicName() string {
	if s.Workflow == "" {
		return s.Name
	}
	return s.Workflow + "." + s.Name
}

// Clone returns a deep copy.
func (s *Step) Clone() *Step {
	c := *s
	c.Keywords = slices.Clone(s.Keywords)
	c.Arguments = s.Arguments.Clone()
	c.SuccessCodes = slices.Clone(s.SuccessCodes)
	return &c
}

// File is a parsed workflow file.
type File struct {
	Name        string
	Path        string
	Description string
	Keywords    []string
	Steps       []*Step
	// Warnings collects the binding warnings of all steps
	Warnings []string
}

// Step returns the step with the given step or public name.
func (f *File) Step(name string) (*Step, bool) {
	for _, s := range f.Steps {
		if s.Name == name || s.PublicName() == name {
			return s, true
		}
	}
	return nil, false
}
