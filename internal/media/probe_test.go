package media

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestParseProbeOutput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr error
	}{
		{
			name:  "Valid duration",
			input: `{"format": {"duration": "125.480000"}}`,
			want:  125.48,
		},
		{
			name:  "Whitespace",
			input: `{"format": {"duration": " 3.0 "}}`,
			want:  3,
		},
		{
			name:    "Missing duration",
			input:   `{"format": {}}`,
			wantErr: ErrNoDuration,
		},
		{
			name:    "N/A duration",
			input:   `{"format": {"duration": "N/A"}}`,
			wantErr: ErrNoDuration,
		},
		{
			name:    "Negative duration",
			input:   `{"format": {"duration": "-1"}}`,
			wantErr: ErrNoDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeOutput([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseProbeOutputInvalidJSON(t *testing.T) {
	if _, err := parseProbeOutput([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestProbeMissingFile(t *testing.T) {
	p := NewFFprobe("ffprobe", time.Second)
	_, err := p.Probe(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestProbeIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available, skipping integration test")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping integration test")
	}

	videoFile := filepath.Join(t.TempDir(), "test.mp4")
	if err := createTestVideoFile(videoFile, 4); err != nil {
		t.Skipf("Could not create test video: %v", err)
	}

	seconds, err := NewFFprobe("ffprobe", 30*time.Second).Probe(context.Background(), videoFile)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if seconds < 3.5 || seconds > 4.5 {
		t.Errorf("expected about 4 seconds, got %v", seconds)
	}
}

func TestFindBinary(t *testing.T) {
	if got := findBinary("ffmpeg", "/opt/ffmpeg", ""); got != "/opt/ffmpeg" {
		t.Errorf("override should win, got %q", got)
	}
	if got := findBinary("ffmpeg", "", t.TempDir()); got != "ffmpeg" {
		t.Errorf("empty dir should fall back to PATH name, got %q", got)
	}
}
