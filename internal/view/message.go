package view

import (
	"dupe-checker/internal/pipeline"
)

// Message types sent to websocket clients.
const (
	TypeSnapshot    = "snapshot"
	TypeReset       = "reset"
	TypeRowInserted = "row_inserted"
	TypeRowUpdated  = "row_updated"
	TypeStatus      = "status"
	TypeError       = "error"
	TypeState       = "state"
)

// Message is one update on the live stream.
type Message struct {
	Type     string           `json:"type"`
	RunID    string           `json:"runId,omitempty"`
	Row      *Row             `json:"row,omitempty"`
	Text     string           `json:"text,omitempty"`
	Pipeline string           `json:"pipeline,omitempty"`
	State    *pipeline.Status `json:"state,omitempty"`
	Snapshot *Snapshot        `json:"snapshot,omitempty"`
}
