package handlers

import (
	"sync/atomic"
	"time"

	"dupe-checker/internal/pipeline"
	"dupe-checker/internal/view"
)

// Revealer shows a file in the platform file manager.
type Revealer interface {
	Reveal(fullPath string) error
}

// Handlers serves the duplicate review API.
type Handlers struct {
	manager   *pipeline.Manager
	model     *view.Model
	hub       *view.Hub
	revealer  Revealer
	startTime time.Time
	ready     atomic.Bool
}

// New wires handlers to a pipeline manager and its view model. hub may be
// nil, in which case the live stream endpoint answers 503.
func New(manager *pipeline.Manager, model *view.Model, hub *view.Hub, revealer Revealer) *Handlers {
	return &Handlers{
		manager:   manager,
		model:     model,
		hub:       hub,
		revealer:  revealer,
		startTime: time.Now(),
	}
}

// SetReady marks the service as able to accept work.
func (h *Handlers) SetReady(ready bool) {
	h.ready.Store(ready)
}
