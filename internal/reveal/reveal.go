package reveal

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"dupe-checker/internal/filesystem"
	"dupe-checker/internal/logging"
)

// ErrNotFound is returned when the path to reveal does not exist.
var ErrNotFound = errors.New("path does not exist")

// Runner starts an external command without waiting for it.
type Runner func(name string, args ...string) error

// Revealer shows files in the desktop file manager.
type Revealer struct {
	goos string
	run  Runner
}

// New returns a Revealer for the running platform.
func New() *Revealer {
	return &Revealer{goos: runtime.GOOS, run: startDetached}
}

// NewWithRunner returns a Revealer for goos that launches commands with run.
func NewWithRunner(goos string, run Runner) *Revealer {
	return &Revealer{goos: goos, run: run}
}

// Command returns the file manager invocation for goos. Windows and macOS
// select the file itself; other platforms open its directory.
func Command(goos, fullPath string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer", []string{"/select,", fullPath}
	case "darwin":
		return "open", []string{"-R", fullPath}
	default:
		return "xdg-open", []string{filepath.Dir(fullPath)}
	}
}

// Reveal shows fullPath in the file manager.
func (r *Revealer) Reveal(fullPath string) error {
	if _, err := filesystem.StatWithRetry(fullPath, filesystem.DefaultRetryConfig()); err != nil {
		logging.Warn("Cannot reveal %s: path does not exist", fullPath)
		return fmt.Errorf("%w: %s", ErrNotFound, fullPath)
	}

	name, args := Command(r.goos, fullPath)
	logging.Debug("Revealing %s with %s %v", fullPath, name, args)
	if err := r.run(name, args...); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// File managers may exit non-zero after handing off to a running
	// instance; only reap the process.
	go func() { _ = cmd.Wait() }()
	return nil
}
