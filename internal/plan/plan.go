package plan

import (
	"slices"
	"time"
)

// Kind is the concrete type of a plan. Kinds never change across versions;
// a stored plan of another kind under the same id is an identity conflict.
type Kind string

const (
	KindPlan                      Kind = "Plan"
	KindCompositePlan             Kind = "CompositePlan"
	KindWorkflowFilePlan          Kind = "WorkflowFilePlan"
	KindWorkflowFileCompositePlan Kind = "WorkflowFileCompositePlan"
)

// IsComposite reports whether plans of this kind group other plans.
func (k Kind) IsComposite() bool {
	return k == KindCompositePlan || k == KindWorkflowFileCompositePlan
}

// DefaultSuccessCodes are the exit codes that count as success when none are declared.
var DefaultSuccessCodes = []int{0}

// AbstractPlan is implemented by *Plan and *CompositePlan.
// All methods that change a plan return a modified copy.
type AbstractPlan interface {
	// Meta returns a copy of the bookkeeping fields.
	Meta() Metadata
	GetID() string
	GetName() string
	GetKind() Kind

	// IsEqualTo compares user-visible content, ignoring ids and bookkeeping.
	IsEqualTo(other AbstractPlan) bool
	// AssignNewID returns a copy with a fresh id minted from the identity
	// salted with sequence.
	AssignNewID(sequence int) AbstractPlan
	// DeriveFrom returns a copy whose DerivedFrom is parentID.
	DeriveFrom(parentID string) AbstractPlan
	// Tombstone returns the terminal version of this plan.
	Tombstone(at time.Time) AbstractPlan
	// Leaves returns the executable plans, flattening composites in order.
	Leaves() []*Plan
}

// Metadata holds the fields every plan has.
type Metadata struct {
	ID            string     `yaml:"id" json:"id"`
	Kind          Kind       `yaml:"kind" json:"kind"`
	Name          string     `yaml:"name" json:"name"`
	Description   string     `yaml:"description,omitempty" json:"description,omitempty"`
	Keywords      []string   `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	DerivedFrom   string     `yaml:"derivedFrom,omitempty" json:"derivedFrom,omitempty"`
	DateCreated   time.Time  `yaml:"dateCreated" json:"dateCreated"`
	InvalidatedAt *time.Time `yaml:"invalidatedAt,omitempty" json:"invalidatedAt,omitempty"`
	Identity      Identity   `yaml:"identity" json:"identity"`
}

// IsTombstone reports whether this version marks the plan as removed.
func (m Metadata) IsTombstone() bool {
	return m.InvalidatedAt != nil
}

func (m Metadata) clone() Metadata {
	c := m
	c.Keywords = slices.Clone(m.Keywords)
	if m.InvalidatedAt != nil {
		at := *m.InvalidatedAt
		c.InvalidatedAt = &at
	}
	return c
}

func (m Metadata) equalContent(o Metadata) bool {
	return m.Kind == o.Kind &&
		m.Name == o.Name &&
		m.Description == o.Description &&
		slices.Equal(m.Keywords, o.Keywords)
}

func (m *Metadata) assignNewID(sequence int) {
	m.Identity = m.Identity.WithSequence(sequence)
	m.ID = m.Identity.NewID()
}

func (m *Metadata) tombstone(at time.Time) {
	invalidated := at.UTC()
	m.DerivedFrom = m.ID
	m.ID = RandomID()
	m.InvalidatedAt = &invalidated
	m.DateCreated = invalidated
}

// Plan is the template of one command.
type Plan struct {
	Metadata     `yaml:",inline"`
	Command      string `yaml:"command" json:"command"`
	Arguments    `yaml:",inline"`
	SuccessCodes []int `yaml:"successCodes,omitempty" json:"successCodes,omitempty"`
}

// NewPlan creates a plan with a random identity.
func NewPlan(name, command string, args Arguments) *Plan {
	p := &Plan{
		Metadata: Metadata{
			Kind:        KindPlan,
			Name:        name,
			DateCreated: time.Now().UTC(),
			Identity:    RandomIdentity(),
		},
		Command:      command,
		Arguments:    args,
		SuccessCodes: slices.Clone(DefaultSuccessCodes),
	}
	p.ID = p.Identity.NewID()
	return p
}

// NewWorkflowFilePlan creates the plan of one workflow-file step. Its id is
// the content hash of (path, publicName).
func NewWorkflowFilePlan(path, publicName, command string, args Arguments) *Plan {
	p := &Plan{
		Metadata: Metadata{
			Kind:        KindWorkflowFilePlan,
			Name:        publicName,
			DateCreated: time.Now().UTC(),
			Identity:    ContentHashIdentity(path, publicName),
		},
		Command:      command,
		Arguments:    args,
		SuccessCodes: slices.Clone(DefaultSuccessCodes),
	}
	p.ID = p.Identity.NewID()
	return p
}

// Meta implements AbstractPlan.
func (p *Plan) Meta() Metadata { return p.Metadata.clone() }

// GetID implements AbstractPlan.
func (p *Plan) GetID() string { return p.ID }

// GetName implements AbstractPlan.
func (p *Plan) GetName() string { return p.Name }

// GetKind implements AbstractPlan.
func (p *Plan) GetKind() Kind { return p.Kind }

// Clone returns a deep copy.
func (p *Plan) Clone() *Plan {
	return &Plan{
		Metadata:     p.Metadata.clone(),
		Command:      p.Command,
		Arguments:    p.Arguments.Clone(),
		SuccessCodes: slices.Clone(p.SuccessCodes),
	}
}

// IsEqualTo implements AbstractPlan.
func (p *Plan) IsEqualTo(other AbstractPlan) bool {
	o, ok := other.(*Plan)
	if !ok || o == nil {
		return false
	}
	return p.Metadata.equalContent(o.Metadata) &&
		p.Command == o.Command &&
		slices.Equal(p.successCodes(), o.successCodes()) &&
		slices.Equal(p.Inputs, o.Inputs) &&
		slices.Equal(p.Outputs, o.Outputs) &&
		slices.Equal(p.Parameters, o.Parameters)
}

func (p *Plan) successCodes() []int {
	if len(p.SuccessCodes) == 0 {
		return DefaultSuccessCodes
	}
	return p.SuccessCodes
}

// IsSuccess reports whether exitCode is one of the plan's success codes.
func (p *Plan) IsSuccess(exitCode int) bool {
	return slices.Contains(p.successCodes(), exitCode)
}

// AssignNewID implements AbstractPlan.
func (p *Plan) AssignNewID(sequence int) AbstractPlan {
	c := p.Clone()
	c.assignNewID(sequence)
	return c
}

// DeriveFrom implements AbstractPlan.
func (p *Plan) DeriveFrom(parentID string) AbstractPlan {
	c := p.Clone()
	c.DerivedFrom = parentID
	return c
}

// Tombstone implements AbstractPlan.
func (p *Plan) Tombstone(at time.Time) AbstractPlan {
	c := p.Clone()
	c.tombstone(at)
	return c
}

// Leaves implements AbstractPlan.
func (p *Plan) Leaves() []*Plan {
	return []*Plan{p}
}

// CompositePlan is an ordered, named group of plans.
type CompositePlan struct {
	Metadata `yaml:",inline"`
	Plans    []AbstractPlan `yaml:"-" json:"plans"`
}

// NewCompositePlan creates a composite with a random identity.
func NewCompositePlan(name string, children []AbstractPlan) *CompositePlan {
	c := &CompositePlan{
		Metadata: Metadata{
			Kind:        KindCompositePlan,
			Name:        name,
			DateCreated: time.Now().UTC(),
			Identity:    RandomIdentity(),
		},
		Plans: slices.Clone(children),
	}
	c.ID = c.Identity.NewID()
	return c
}

// NewWorkflowFileCompositePlan creates the composite of a workflow file. Its
// id is the content hash of (path, workflowName).
func NewWorkflowFileCompositePlan(path, workflowName string, children []AbstractPlan) *CompositePlan {
	c := &CompositePlan{
		Metadata: Metadata{
			Kind:        KindWorkflowFileCompositePlan,
			Name:        workflowName,
			DateCreated: time.Now().UTC(),
			Identity:    ContentHashIdentity(path, workflowName),
		},
		Plans: slices.Clone(children),
	}
	c.ID = c.Identity.NewID()
	return c
}

// Meta implements AbstractPlan.
func (c *CompositePlan) Meta() Metadata { return c.Metadata.clone() }

// GetID implements AbstractPlan.
func (c *CompositePlan) GetID() string { return c.ID }

// GetName implements AbstractPlan.
func (c *CompositePlan) GetName() string { return c.Name }

// GetKind implements AbstractPlan.
func (c *CompositePlan) GetKind() Kind { return c.Kind }

// Clone returns a copy sharing the (immutable) children.
func (c *CompositePlan) Clone() *CompositePlan {
	return &CompositePlan{
		Metadata: c.Metadata.clone(),
		Plans:    slices.Clone(c.Plans),
	}
}

// WithPlans returns a copy whose children are replaced.
func (c *CompositePlan) WithPlans(children []AbstractPlan) *CompositePlan {
	cp := c.Clone()
	cp.Plans = slices.Clone(children)
	return cp
}

// ChildIDs returns the ids of the direct children in order.
func (c *CompositePlan) ChildIDs() []string {
	ids := make([]string, len(c.Plans))
	for i, child := range c.Plans {
		ids[i] = child.GetID()
	}
	return ids
}

// IsEqualTo implements AbstractPlan.
func (c *CompositePlan) IsEqualTo(other AbstractPlan) bool {
	o, ok := other.(*CompositePlan)
	if !ok || o == nil {
		return false
	}
	if !c.Metadata.equalContent(o.Metadata) || len(c.Plans) != len(o.Plans) {
		return false
	}
	for i := range c.Plans {
		if !c.Plans[i].IsEqualTo(o.Plans[i]) {
			return false
		}
	}
	return true
}

// AssignNewID implements AbstractPlan.
func (c *CompositePlan) AssignNewID(sequence int) AbstractPlan {
	cp := c.Clone()
	cp.assignNewID(sequence)
	return cp
}

// DeriveFrom implements AbstractPlan.
func (c *CompositePlan) DeriveFrom(parentID string) AbstractPlan {
	cp := c.Clone()
	cp.DerivedFrom = parentID
	return cp
}

// Tombstone implements AbstractPlan.
func (c *CompositePlan) Tombstone(at time.Time) AbstractPlan {
	cp := c.Clone()
	cp.tombstone(at)
	return cp
}

// Leaves implements AbstractPlan.
func (c *CompositePlan) Leaves() []*Plan {
	var leaves []*Plan
	for _, child := range c.Plans {
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}

// Find returns the direct or nested child with the given name.
func (c *CompositePlan) Find(name string) (AbstractPlan, bool) {
	for _, child := range c.Plans {
		if child.GetName() == name {
			return child, true
		}
		if nested, ok := child.(*CompositePlan); ok {
			if found, ok := nested.Find(name); ok {
				return found, true
			}
		}
	}
	return nil, false
}
