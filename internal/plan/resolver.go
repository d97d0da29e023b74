package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/pkg/logging"
)

// TimeSource returns the current time. Tests inject a fixed clock.
type TimeSource func() time.Time

// Sequence is the caller-owned collision-avoidance counter used when plans
// have to be re-keyed. It is not safe for concurrent use.
type Sequence struct {
	last int
}

// NewSequence returns a sequence whose first Next value is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next advances the sequence and returns the new value.
func (s *Sequence) Next() int {
	s.last++
	return s.last
}

// maxRekeys bounds the re-keying loop so that a corrupt store cannot make
// Resolve spin forever.
const maxRekeys = 1000

// Resolve reconciles newPlan with the versions stored in lookup and returns
// the plan to use:
//
//   - the stored latest version when newPlan is equal to it (reuse),
//   - a copy of newPlan deriving from the latest version, with a fresh id,
//   - newPlan itself when nothing is stored under its id (root version).
//
// Plans colliding with a tombstoned or incompatible stored plan are re-keyed
// with AssignNewID(seq.Next()) and resolved again. Composites resolve their
// children first and then themselves. Nothing is written to the store.
func Resolve(newPlan AbstractPlan, lookup Lookup, seq *Sequence) (AbstractPlan, error) {
	if c, ok := newPlan.(*CompositePlan); ok {
		children := make([]AbstractPlan, len(c.Plans))
		for i, child := range c.Plans {
			resolved, err := Resolve(child, lookup, seq)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s in %s: %w", child.GetName(), c.Name, err)
			}
			children[i] = resolved
		}
		newPlan = c.WithPlans(children)
	}
	return resolveOne(newPlan, lookup, seq)
}

func resolveOne(p AbstractPlan, lookup Lookup, seq *Sequence) (AbstractPlan, error) {
	rekeyed := false

	for attempt := 0; attempt < maxRekeys; attempt++ {
		latest, ok := latestVersion(p, lookup, rekeyed)
		if !ok {
			return p, nil
		}

		if err := checkIdentity(p, latest); err != nil {
			var conflict *api.IdentityConflictError
			if !errors.As(err, &conflict) {
				return nil, err
			}
			logging.Debug("Resolver", "Re-keying %s: %s", p.GetName(), conflict.Error())
			p = p.AssignNewID(seq.Next())
			rekeyed = true
			continue
		}

		if p.IsEqualTo(latest) {
			logging.Debug("Resolver", "Reusing %s version %s", p.GetName(), latest.GetID())
			return latest, nil
		}

		return newVersion(p, latest.GetID(), lookup, seq)
	}

	return nil, fmt.Errorf("could not find a free id for plan %s after %d attempts", p.GetName(), maxRekeys)
}

// latestVersion finds the newest stored version newPlan should be compared to.
// Random-identity plans are matched by name unless they were just re-keyed.
func latestVersion(p AbstractPlan, lookup Lookup, rekeyed bool) (AbstractPlan, bool) {
	base := p.GetID()
	if p.Meta().Identity.Strategy != IdentityContentHash && !rekeyed {
		if named, ok := lookup.GetByName(p.GetName()); ok {
			base = named.GetID()
		}
	}
	return lookup.GetLatest(base)
}

func checkIdentity(p, latest AbstractPlan) error {
	if latest.Meta().IsTombstone() {
		return &api.IdentityConflictError{ID: latest.GetID(), Reason: "plan was removed"}
	}
	if latest.GetKind() != p.GetKind() {
		return &api.IdentityConflictError{
			ID:     latest.GetID(),
			Reason: fmt.Sprintf("stored plan is a %s, not a %s", latest.GetKind(), p.GetKind()),
		}
	}
	return nil
}

func newVersion(p AbstractPlan, parentID string, lookup Lookup, seq *Sequence) (AbstractPlan, error) {
	derived := p.DeriveFrom(parentID)
	for attempt := 0; attempt < maxRekeys; attempt++ {
		candidate := derived.AssignNewID(seq.Next())
		if _, taken := lookup.GetByID(candidate.GetID()); !taken {
			logging.Debug("Resolver", "New version %s of %s derived from %s", candidate.GetID(), p.GetName(), parentID)
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("could not find a free id for plan %s after %d attempts", p.GetName(), maxRekeys)
}
