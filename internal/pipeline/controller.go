package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is a pipeline lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	for candidate := StateIdle; candidate <= StateFailed; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown pipeline state %q", text)
}

// Status is a point-in-time view of a Controller.
type Status struct {
	Pipeline        Name   `json:"pipeline"`
	RunID           string `json:"runId,omitempty"`
	State           State  `json:"state"`
	Running         bool   `json:"running"`
	CancelRequested bool   `json:"cancelRequested"`
	Done            int    `json:"done"`
	Total           int    `json:"total"`
}

// Controller holds the shared flags of one pipeline. The flags are read by
// request handlers and written by the worker, so all of them are atomic.
type Controller struct {
	name    Name
	running atomic.Bool
	cancel  atomic.Bool
	state   atomic.Int32
	done    atomic.Int64
	total   atomic.Int64

	mu       sync.Mutex
	runID    string
	finished chan struct{}
}

func newController(name Name) *Controller {
	c := &Controller{name: name, finished: make(chan struct{})}
	close(c.finished)
	return c
}

// tryStart claims the pipeline. It fails when a run is already in progress.
// Claiming, finishing and cancelling all hold mu, so a cancel aimed at one run
// can never land on the next.
func (c *Controller) tryStart() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.CompareAndSwap(false, true) {
		return "", false
	}
	runID := uuid.NewString()
	c.runID = runID
	c.finished = make(chan struct{})

	c.cancel.Store(false)
	c.done.Store(0)
	c.total.Store(0)
	c.state.Store(int32(StateRunning))
	return runID, true
}

// finish records the terminal state and releases the pipeline. The returned
// function closes the run's Done channel; callers invoke it once the final
// state has been published.
func (c *Controller) finish(state State) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(state))
	c.cancel.Store(false)
	c.running.Store(false)

	finished := c.finished
	return func() { close(finished) }
}

// RequestCancel asks a running worker to stop at its next checkpoint. It
// returns false when nothing is running.
func (c *Controller) RequestCancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.Load() {
		return false
	}
	c.cancel.Store(true)
	return true
}

// RequestCancelRun is RequestCancel restricted to the run with the given id.
// It returns false when that run is no longer the active one.
func (c *Controller) RequestCancelRun(runID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.Load() || c.runID != runID {
		return false
	}
	c.cancel.Store(true)
	return true
}

// CancelRequested reports whether the current run should stop.
func (c *Controller) CancelRequested() bool {
	return c.cancel.Load()
}

// Running reports whether a worker is active.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Done returns a channel closed when the current (or last) run finishes.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

func (c *Controller) setProgress(done, total int) {
	c.done.Store(int64(done))
	c.total.Store(int64(total))
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	runID := c.runID
	c.mu.Unlock()

	return Status{
		Pipeline:        c.name,
		RunID:           runID,
		State:           c.State(),
		Running:         c.Running(),
		CancelRequested: c.CancelRequested(),
		Done:            int(c.done.Load()),
		Total:           int(c.total.Load()),
	}
}
