package pipeline

import (
	"fmt"
	"time"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/filesystem"
	"dupe-checker/internal/logging"
	"dupe-checker/internal/mediatypes"
	"dupe-checker/internal/metrics"
)

// SeekOffset returns where a thumbnail frame is taken: the midpoint of a known
// duration, never earlier than one second, and one second otherwise.
func SeekOffset(d dupes.Duration) float64 {
	if !d.Known || d.Seconds <= 0 {
		return 1
	}
	return max(d.Seconds/2, 1)
}

func (m *Manager) runPreviews(runID string, gen uint64) {
	started := time.Now()
	state := StateFailed
	generated := 0

	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Preview generation %s panicked: %v", runID, r)
			m.queue.Push(StatusChanged{Text: fmt.Sprintf("Preview generation failed: %v", r)})
			state = StateFailed
		}
		m.end(m.preview, state, started)
		logging.Info("Preview generation %s finished: %s, %d thumbnails in %v",
			runID, state, generated, time.Since(started).Round(time.Millisecond))
	}()

	i := m.session.PreviewIndex()
	for {
		if m.session.Generation() != gen {
			state = StateCancelled
			m.queue.Push(StatusChanged{Text: "Preview generation stopped: a new import started."})
			return
		}

		total := m.session.Len()
		if i >= total {
			break
		}
		if m.preview.CancelRequested() {
			state = StateCancelled
			m.queue.Push(StatusChanged{Text: fmt.Sprintf("Preview generation cancelled. Generated previews: %d/%d", i, total)})
			return
		}

		d, ok := m.session.At(i)
		if !ok {
			break
		}
		if m.previewOne(gen, d) {
			generated++
		}

		i++
		m.session.setPreviewIndex(gen, i)
		m.preview.setProgress(i, total)
		if i%m.opts.PreviewInterval == 0 {
			m.queue.Push(StatusChanged{Text: fmt.Sprintf("Generated previews: %d/%d", i, total)})
		}
	}

	state = StateCompleted
	total := m.session.Len()
	m.preview.setProgress(i, total)
	m.queue.Push(StatusChanged{Text: fmt.Sprintf("Preview generation completed. Generated previews: %d/%d", i, total)})
}

// previewOne renders and publishes one thumbnail. Failures leave the row
// without a thumbnail.
func (m *Manager) previewOne(gen uint64, d dupes.Duplicate) bool {
	path := d.Record.FullPath()
	kind := string(mediatypes.KindOf(d.Record.Name))

	if !filesystem.Exists(path) {
		metrics.ThumbnailsTotal.WithLabelValues(kind, "skipped_missing").Inc()
		return false
	}

	img, err := m.opts.Extractor.Extract(m.ctx, path, SeekOffset(d.Duration))
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues(kind, "error_extract").Inc()
		logging.Debug("Frame extraction failed for %s: %v", path, err)
		return false
	}

	thumb, err := m.opts.Renderer.Render(img)
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues(kind, "error_render").Inc()
		logging.Debug("Thumbnail render failed for %s: %v", path, err)
		return false
	}

	published := m.session.setThumbnail(gen, d.Index, thumb, func(cur dupes.Duplicate) {
		m.queue.Push(ThumbnailReady{Index: cur.Index, Key: cur.Key(), Thumbnail: thumb})
	})
	if !published {
		return false
	}
	metrics.ThumbnailsTotal.WithLabelValues(kind, "success").Inc()
	return true
}
