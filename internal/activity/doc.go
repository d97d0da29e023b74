// Package activity records executions of plans.
//
// An Activity is one run of one plan: the paths it read (usages), the paths it
// wrote (generations), the parameter values it ran with and its exit code.
// Activities of a single workflow-file execution are grouped in a Collection.
// The activity history is the input of the staleness detector and of the
// past-execution graph.
package activity
