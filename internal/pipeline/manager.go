package pipeline

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"time"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/logging"
	"dupe-checker/internal/media"
	"dupe-checker/internal/metrics"
)

var (
	// ErrAlreadyRunning is returned when a pipeline is started twice.
	ErrAlreadyRunning = errors.New("pipeline already running")
	// ErrNoDuplicates is returned when previews are requested before any
	// duplicate is loaded.
	ErrNoDuplicates = errors.New("no duplicates loaded")
	// ErrEmptyPath is returned when an import is started without a file.
	ErrEmptyPath = errors.New("no inventory file selected")
)

// Progress reporting intervals.
const (
	DefaultRowInterval     = 100
	DefaultEnrichInterval  = 20
	DefaultPreviewInterval = 5
)

// Renderer turns a decoded frame into thumbnail bytes.
type Renderer interface {
	Render(img image.Image) ([]byte, error)
}

// Options configures a Manager. Prober, Extractor and Renderer are required.
type Options struct {
	Prober    media.Prober
	Extractor media.Extractor
	Renderer  Renderer
	Policy    dupes.Policy
	Queue     *Queue

	RowInterval     int
	EnrichInterval  int
	PreviewInterval int
}

// Manager owns the session and both pipeline controllers.
type Manager struct {
	opts     Options
	queue    *Queue
	session  *Session
	importer *Controller
	preview  *Controller

	// open reads the inventory file; tests swap it for a pipe.
	open func(path string) (io.ReadCloser, error)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager with idle pipelines and an empty session.
func NewManager(opts Options) *Manager {
	if opts.Queue == nil {
		opts.Queue = NewQueue()
	}
	if opts.RowInterval <= 0 {
		opts.RowInterval = DefaultRowInterval
	}
	if opts.EnrichInterval <= 0 {
		opts.EnrichInterval = DefaultEnrichInterval
	}
	if opts.PreviewInterval <= 0 {
		opts.PreviewInterval = DefaultPreviewInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		opts:     opts,
		queue:    opts.Queue,
		session:  newSession(),
		importer: newController(Import),
		preview:  newController(Preview),
		open:     openInventory,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Queue returns the event queue workers publish to.
func (m *Manager) Queue() *Queue { return m.queue }

// Session returns the current session.
func (m *Manager) Session() *Session { return m.session }

// ImportController returns the import pipeline controller.
func (m *Manager) ImportController() *Controller { return m.importer }

// PreviewController returns the preview pipeline controller.
func (m *Manager) PreviewController() *Controller { return m.preview }

// StartImport resets the session and starts ingesting the CSV at path in the
// background. It returns the run id.
func (m *Manager) StartImport(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	runID, ok := m.importer.tryStart()
	if !ok {
		metrics.PipelineRejectedTotal.WithLabelValues(string(Import), "already_running").Inc()
		return "", ErrAlreadyRunning
	}

	gen := m.session.reset()
	metrics.DuplicatesLoaded.Set(0)
	if !m.preview.Running() {
		m.preview.setProgress(0, 0)
	}

	logging.Info("Import %s started: %s", runID, path)
	metrics.PipelineRunning.WithLabelValues(string(Import)).Set(1)

	m.queue.Push(Reset{RunID: runID})
	m.queue.Push(StateChanged{Status: m.importer.Status()})
	m.queue.Push(StatusChanged{Text: "Starting CSV import..."})

	m.wg.Add(1)
	go m.runImport(runID, gen, path)
	return runID, nil
}

// CancelImport requests cancellation of a running import.
func (m *Manager) CancelImport() bool {
	if !m.importer.RequestCancel() {
		return false
	}
	logging.Info("Import cancellation requested")
	m.queue.Push(StatusChanged{Text: "Cancelling CSV import..."})
	return true
}

// StartPreviews starts thumbnail generation from the saved preview index.
func (m *Manager) StartPreviews() (string, error) {
	if m.session.Len() == 0 {
		metrics.PipelineRejectedTotal.WithLabelValues(string(Preview), "no_duplicates").Inc()
		return "", ErrNoDuplicates
	}

	runID, ok := m.preview.tryStart()
	if !ok {
		metrics.PipelineRejectedTotal.WithLabelValues(string(Preview), "already_running").Inc()
		return "", ErrAlreadyRunning
	}

	gen := m.session.Generation()
	logging.Info("Preview generation %s started at index %d", runID, m.session.PreviewIndex())
	metrics.PipelineRunning.WithLabelValues(string(Preview)).Set(1)

	m.queue.Push(StateChanged{Status: m.preview.Status()})
	m.queue.Push(StatusChanged{Text: "Starting preview generation..."})

	m.wg.Add(1)
	go m.runPreviews(runID, gen)
	return runID, nil
}

// CancelPreviews requests cancellation of a running preview generation.
func (m *Manager) CancelPreviews() bool {
	if !m.preview.RequestCancel() {
		return false
	}
	logging.Info("Preview cancellation requested")
	m.queue.Push(StatusChanged{Text: "Cancelling preview generation..."})
	return true
}

// Wait blocks until no worker is running.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close cancels both pipelines, aborts in-flight external calls and waits for
// the workers to exit.
func (m *Manager) Close() {
	m.importer.RequestCancel()
	m.preview.RequestCancel()
	m.cancel()
	m.wg.Wait()
}

// end releases a controller and publishes its terminal state.
func (m *Manager) end(c *Controller, state State, started time.Time) {
	closeDone := c.finish(state)
	defer closeDone()

	name := string(c.name)
	metrics.PipelineRunning.WithLabelValues(name).Set(0)
	metrics.PipelineRunsTotal.WithLabelValues(name, state.String()).Inc()
	metrics.PipelineLastRunDuration.WithLabelValues(name).Set(time.Since(started).Seconds())

	m.queue.Push(StateChanged{Status: c.Status()})
}
