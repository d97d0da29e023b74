// Package api holds the types shared between the lineage core and the
// application that embeds it.
//
// The core components (argument classifier, step command parser, plan model,
// execution graph builder, derivation resolver and staleness detector) never
// touch the filesystem, a Git repository or a database directly. Whatever they
// need from the outside world is expressed here as a narrow capability:
//
//   - PathChecker answers whether a candidate token names an existing path.
//   - RepositorySnapshot is a read-only view of tracked, untracked and changed
//     paths, taken by the embedding application.
//
// Plan persistence is injected as well, but since its interfaces mention plan
// types they live next to them in the plan package (plan.Lookup, plan.Store).
//
// # Error Taxonomy
//
// ParseError is fatal to the parse of a workflow file or step command and
// names the offending step and attribute. GraphCycleError is fatal to graph
// construction and carries the full cycle. IdentityConflictError is internal
// to the derivation resolver; it triggers a re-key and never reaches callers.
// NotFoundError reports failed store lookups.
//
// Unmatched arguments and unmatched command tokens are not errors. The parser
// returns them as warnings and the step still parses.
package api
