package view

import (
	"math"
	"sync"

	"github.com/dustin/go-humanize"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/mediatypes"
	"dupe-checker/internal/pipeline"
)

// Row is one line of the duplicate grid.
type Row struct {
	Index           int     `json:"index"`
	Name            string  `json:"name"`
	Path            string  `json:"path"`
	Size            float64 `json:"size"`
	SizeHuman       string  `json:"sizeHuman"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	Kind            string  `json:"kind"`
	Matched         string  `json:"matched"`
	HasThumbnail    bool    `json:"hasThumbnail"`
}

// NewRow converts a duplicate into its display form.
func NewRow(d dupes.Duplicate) Row {
	row := Row{
		Index:        d.Index,
		Name:         d.Record.Name,
		Path:         d.Record.Path,
		Size:         d.Record.Size,
		SizeHuman:    FormatSize(d.Record.Size),
		Duration:     d.Duration.String(),
		Kind:         string(mediatypes.KindOf(d.Record.Name)),
		Matched:      d.Matched.String(),
		HasThumbnail: d.HasThumbnail(),
	}
	if d.Duration.Known {
		row.DurationSeconds = d.Duration.Seconds
	}
	return row
}

// FormatSize renders a byte count in 1024-based units.
func FormatSize(size float64) string {
	if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return "Unknown"
	}
	return humanize.IBytes(uint64(size))
}

// Snapshot is the complete presentation state.
type Snapshot struct {
	RunID     string          `json:"runId,omitempty"`
	Rows      []Row           `json:"rows"`
	Status    string          `json:"status"`
	LastError string          `json:"lastError,omitempty"`
	Import    pipeline.Status `json:"import"`
	Preview   pipeline.Status `json:"preview"`
}

// Model is the grid state. It is written by one consumer and read by request
// handlers.
type Model struct {
	mu        sync.RWMutex
	runID     string
	rows      []Row
	status    string
	lastError string
	states    map[pipeline.Name]pipeline.Status
}

// NewModel returns an empty model with both pipelines idle.
func NewModel() *Model {
	return &Model{
		status: "Ready",
		states: map[pipeline.Name]pipeline.Status{
			pipeline.Import:  {Pipeline: pipeline.Import},
			pipeline.Preview: {Pipeline: pipeline.Preview},
		},
	}
}

// Apply updates the model and returns the message describing the change.
// It returns false for events that do not change anything visible.
func (m *Model) Apply(ev pipeline.Event) (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e := ev.(type) {
	case pipeline.Reset:
		m.runID = e.RunID
		m.rows = nil
		m.lastError = ""
		return Message{Type: TypeReset, RunID: e.RunID}, true

	case pipeline.RowInserted:
		if e.Row.Index != len(m.rows) {
			return Message{}, false
		}
		row := NewRow(e.Row)
		m.rows = append(m.rows, row)
		return Message{Type: TypeRowInserted, Row: &row}, true

	case pipeline.ThumbnailReady:
		if e.Index < 0 || e.Index >= len(m.rows) || len(e.Thumbnail) == 0 {
			return Message{}, false
		}
		// A thumbnail from a previous import must not land on the row that
		// now holds the same index.
		if r := m.rows[e.Index]; dupes.KeyOf(r.Path, r.Name) != e.Key {
			return Message{}, false
		}
		m.rows[e.Index].HasThumbnail = true
		row := m.rows[e.Index]
		return Message{Type: TypeRowUpdated, Row: &row}, true

	case pipeline.StatusChanged:
		m.status = e.Text
		return Message{Type: TypeStatus, Text: e.Text}, true

	case pipeline.ErrorRaised:
		m.lastError = e.Message
		return Message{Type: TypeError, Pipeline: string(e.Pipeline), Text: e.Message}, true

	case pipeline.StateChanged:
		state := e.Status
		m.states[state.Pipeline] = state
		return Message{Type: TypeState, Pipeline: string(state.Pipeline), State: &state}, true
	}
	return Message{}, false
}

// Rows returns a copy of every row in display order.
func (m *Model) Rows() []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Row, len(m.rows))
	copy(out, m.rows)
	return out
}

// Row returns the row at index.
func (m *Model) Row(index int) (Row, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[index], true
}

// Status returns the status line.
func (m *Model) Status() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// LastError returns the most recent user-visible error since the last reset.
func (m *Model) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// Snapshot returns a copy of the whole model.
func (m *Model) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]Row, len(m.rows))
	copy(rows, m.rows)
	return Snapshot{
		RunID:     m.runID,
		Rows:      rows,
		Status:    m.status,
		LastError: m.lastError,
		Import:    m.states[pipeline.Import],
		Preview:   m.states[pipeline.Preview],
	}
}
