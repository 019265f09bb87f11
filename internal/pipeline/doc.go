// Package pipeline runs the two background stages of a duplicate audit.
//
// The import stage streams a CSV inventory, classifies duplicates and probes
// each duplicate's duration. The preview stage walks the duplicate sequence
// and renders a thumbnail seeked to the middle of each file. Each stage has
// its own [Controller] holding the running flag, the cancel flag and progress
// counters, so the stages can run and be cancelled independently.
//
// Workers never touch presentation state. They push immutable [Event] values
// into a [Queue] that a single consumer drains; see package view.
//
// Cancellation is cooperative: a request sets a flag that workers check
// between CSV rows, between duration probes and before each preview. An
// external call that is already running is allowed to finish.
//
// When an import is cancelled while durations are being probed, duplicates
// that were not reached are dropped: they are neither shown nor kept in the
// session, so row indices and session indices stay aligned.
package pipeline
