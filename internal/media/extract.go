package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"dupe-checker/internal/logging"
	"dupe-checker/internal/metrics"

	_ "image/jpeg"
)

// Extractor decodes one frame of a media file at a seek offset in seconds.
type Extractor interface {
	Extract(ctx context.Context, path string, offset float64) (image.Image, error)
}

// FFmpegExtractor is an Extractor backed by the ffmpeg command.
type FFmpegExtractor struct {
	binary  string
	timeout time.Duration
}

// NewFFmpegExtractor returns an extractor. A zero timeout disables the
// per-call limit.
func NewFFmpegExtractor(binary string, timeout time.Duration) *FFmpegExtractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegExtractor{binary: binary, timeout: timeout}
}

// Extract seeks to offset and pipes a single MJPEG frame back.
func (e *FFmpegExtractor) Extract(ctx context.Context, path string, offset float64) (image.Image, error) {
	if offset < 0 {
		offset = 0
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.binary,
		"-hide_banner",
		"-loglevel", "error",
		"-ss", FormatOffset(offset),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	metrics.ExtractDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	logging.Debug("FFmpeg frame size: %d bytes for %s", stdout.Len(), path)

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}

	return img, nil
}

// FormatOffset renders seconds the way ffmpeg's -ss accepts them.
func FormatOffset(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
