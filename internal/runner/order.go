package runner

import (
	"fmt"

	"github.com/giantswarm/lineage/internal/dependency"
	"github.com/giantswarm/lineage/internal/plan"
)

// Order returns the leaf plans of root with producers before consumers.
// Plans that do not depend on each other keep their declaration order, so
// the result is stable across runs.
func Order(root plan.AbstractPlan, virtualLinks bool) ([]*plan.Plan, error) {
	leaves := root.Leaves()
	byID := make(map[dependency.NodeID]*plan.Plan, len(leaves))
	for _, leaf := range leaves {
		byID[dependency.NodeID(leaf.ID)] = leaf
	}

	g, err := dependency.Build(dependency.FromPlans([]plan.AbstractPlan{root}), dependency.Options{VirtualLinks: virtualLinks})
	if err != nil {
		return nil, fmt.Errorf("failed to order plans of %s: %w", root.GetName(), err)
	}

	ordered := make([]*plan.Plan, 0, len(leaves))
	for _, id := range g.TopologicalOrder() {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}
