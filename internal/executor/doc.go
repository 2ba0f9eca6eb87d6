// Package executor runs every deployment unit of a release.
//
// A run flattens the configuration into units and executes them
// concurrently. Within a unit all frames run concurrently, gated only by
// the dependency monitor; within a frame all applications run
// concurrently; within an application steps run strictly in order and stop
// at the first failure.
//
// Each fan-out level owns a status.Tracker for its children and folds the
// children's states into its own entry in the parent tracker. Ordinary
// failures end up as tracker states and never abort siblings. Only
// cancellation of the run context is returned as an error, after the
// cancelled state has been written at every level it passes.
package executor
