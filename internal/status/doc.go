// Package status reports which recorded outputs are stale.
//
// GetStatus walks the activity history forward from every activity that read
// a modified path. Reached activities with generations mark those generations
// outdated; reached activities without generations are reported themselves.
// DetectChanges builds the modified and deleted change sets from a repository
// snapshot and the current content of the used paths.
package status
