package pipeline

import (
	"dupe-checker/internal/dupes"
)

// Name identifies a pipeline.
type Name string

const (
	// Import is the CSV ingestion and duration stage.
	Import Name = "import"
	// Preview is the thumbnail stage.
	Preview Name = "preview"
)

// Event is a presentation update produced by a worker. Events are values and
// are never mutated after they are pushed.
type Event interface {
	// Type names the event for logging, metrics and the wire format.
	Type() string
}

// Reset clears every row. It is sent when an import starts.
type Reset struct {
	RunID string
}

// RowInserted appends a duplicate whose duration is already resolved.
type RowInserted struct {
	Row dupes.Duplicate
}

// ThumbnailReady attaches a thumbnail to an existing row.
type ThumbnailReady struct {
	Index int
	Key   string
	// Thumbnail is JPEG data owned by the receiver once pushed.
	Thumbnail []byte
}

// StatusChanged replaces the status line.
type StatusChanged struct {
	Text string
}

// ErrorRaised is a user-visible failure. Only input errors produce one.
type ErrorRaised struct {
	Pipeline Name
	Message  string
}

// StateChanged reports a pipeline lifecycle transition.
type StateChanged struct {
	Status Status
}

func (Reset) Type() string          { return "reset" }
func (RowInserted) Type() string    { return "row_inserted" }
func (ThumbnailReady) Type() string { return "thumbnail_ready" }
func (StatusChanged) Type() string  { return "status" }
func (ErrorRaised) Type() string    { return "error" }
func (StateChanged) Type() string   { return "state" }
