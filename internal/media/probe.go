package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"dupe-checker/internal/filesystem"
	"dupe-checker/internal/logging"
	"dupe-checker/internal/metrics"
)

var (
	// ErrFileNotFound is returned when the media file does not exist.
	ErrFileNotFound = errors.New("media file not found")
	// ErrNoDuration is returned when the container reports no usable duration.
	ErrNoDuration = errors.New("no duration reported")
)

// Prober reports the duration of a media file in seconds.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// FFprobe is a Prober backed by the ffprobe command.
type FFprobe struct {
	binary  string
	timeout time.Duration
}

// NewFFprobe returns a prober. A zero timeout disables the per-call limit.
func NewFFprobe(binary string, timeout time.Duration) *FFprobe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{binary: binary, timeout: timeout}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe against path.
func (p *FFprobe) Probe(ctx context.Context, path string) (float64, error) {
	start := time.Now()

	if !filesystem.Exists(path) {
		metrics.ProbesTotal.WithLabelValues("not_found").Inc()
		return 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "format=duration",
		"-of", "json",
		"--", path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProbesTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("ffprobe error: %w - %s", err, strings.TrimSpace(stderr.String()))
	}

	seconds, err := parseProbeOutput(stdout.Bytes())
	if err != nil {
		metrics.ProbesTotal.WithLabelValues("error").Inc()
		return 0, err
	}

	logging.Debug("Probed %s: %.2fs", path, seconds)
	metrics.ProbesTotal.WithLabelValues("success").Inc()
	return seconds, nil
}

func parseProbeOutput(data []byte) (float64, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("ffprobe parse: %w", err)
	}
	raw := strings.TrimSpace(out.Format.Duration)
	if raw == "" || raw == "N/A" {
		return 0, ErrNoDuration
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", raw, err)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoDuration, raw)
	}
	return seconds, nil
}
