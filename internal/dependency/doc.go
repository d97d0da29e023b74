// Package dependency builds the execution graph of a set of plans or of a
// recorded activity history.
//
// # Core Concepts
//
// Node: one leaf plan (or one activity) with the paths it reads and writes:
//   - ID: the plan or activity id
//   - FriendlyName: the plan name, used in messages
//   - Inputs / Outputs: named paths
//
// Edge: a producer/consumer relation. A virtual edge links a node writing a
// path to every node reading that path, or reading a file inside a directory
// the producer writes. Explicit edges are supplied by the caller as Links.
//
// # Operations
//
// Build: index outputs, derive virtual edges, add explicit links and reject
// cycles with an *api.GraphCycleError.
//
// TopologicalOrder: producers before consumers. Nodes that are not related
// keep their input order, so a graph without edges returns the input order.
//
// Dependencies / Dependents / Downstream: neighbourhood queries used by the
// runner and by status reporting.
//
// # Usage Example
//
//	nodes := dependency.FromPlans(composite.Plans)
//	graph, err := dependency.Build(nodes, dependency.Options{VirtualLinks: true})
//	if err != nil {
//	    // api.IsGraphCycleError(err)
//	}
//	for _, id := range graph.TopologicalOrder() {
//	    fmt.Println(graph.Get(id).FriendlyName)
//	}
//
// A Graph is not safe for concurrent modification. Once built it is only read.
package dependency
