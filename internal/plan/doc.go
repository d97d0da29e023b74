// Package plan implements the versioned plan model.
//
// A Plan is an immutable template of one command: its base command, the
// Inputs, Outputs and Parameters it takes (each with a position, a prefix and
// an optional stream mapping) and the exit codes that count as success. A
// CompositePlan is an ordered, named group of plans, for example all steps of
// one workflow file.
//
// # Identity
//
// Every plan carries an Identity, a tagged union deciding how ids are minted:
//
//   - IdentityRandom: a random 32 hex character id. Used for plans built from
//     ad-hoc commands.
//   - IdentityContentHash: the first 32 hex characters of
//     sha256(path + "::" + name [+ "::" + sequence]). Used for plans derived
//     from workflow files so that the same step in the same file always maps
//     to the same id.
//
// # Versions
//
// Plans are never mutated or deleted. Editing a plan produces a new version
// whose DerivedFrom names the version it supersedes; removing one appends a
// tombstone version with InvalidatedAt set. Stores keep the versions as a flat
// append-only log keyed by id; GetLatest follows DerivedFrom references
// forward to the newest version.
//
// Resolve reconciles a freshly built plan with that history: it reuses the
// stored version when nothing changed, derives a new version otherwise, and
// re-keys plans whose id collides with a tombstoned or incompatible plan.
//
// # Equality
//
// IsEqualTo compares everything a user can change (names, descriptions,
// keywords, command, success codes and every argument field) and ignores
// bookkeeping: ids, DerivedFrom, DateCreated and InvalidatedAt. Composites
// compare their children recursively and in order.
package plan
