// Package status tracks the execution state of deployment units.
//
// # Why a scoped tracker
//
// Every hierarchy level that fans out work (the run over its units, a unit
// over its frames, a frame over its applications) owns one Tracker. The
// owner creates it, the concurrently running children write to it, and the
// owner folds its entries into its own verdict and discards it. Trackers
// never outlive their scope and are never shared between unrelated runs.
//
// # State transitions
//
// Entries follow
//
//	pending -> in_progress -> success | failed | cancelled
//
// The tracker does not enforce transition legality; callers must not
// regress a terminal state.
//
// # Concurrency
//
// All access to the entry map is serialized by one mutex held only for the
// map operation. Reads return copies. Every mutation also wakes waiters
// blocked in WaitTerminal.
package status
