package pipeline

import (
	"errors"
	"fmt"
	"io"
	"time"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/filesystem"
	"dupe-checker/internal/inventory"
	"dupe-checker/internal/logging"
	"dupe-checker/internal/metrics"
)

func (m *Manager) runImport(runID string, gen uint64, path string) {
	started := time.Now()
	state := StateFailed

	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Import %s panicked: %v", runID, r)
			m.fail(fmt.Sprintf("Import failed: %v", r))
			state = StateFailed
		}
		m.end(m.importer, state, started)
		logging.Info("Import %s finished: %s in %v", runID, state, time.Since(started).Round(time.Millisecond))
	}()

	records, cancelled, err := m.ingest(gen, path)
	if err != nil {
		logging.Error("Import %s failed: %v", runID, err)
		m.fail(fmt.Sprintf("Failed to import CSV: %v", err))
		return
	}

	dups := dupes.Classify(records, m.opts.Policy)
	m.session.setStats(gen, func(s *ImportStats) { s.Duplicates = len(dups) })
	logging.Debug("Import %s classified %d duplicates out of %d records", runID, len(dups), len(records))

	if cancelled {
		// Rows read before the cancel are still classified, but nothing is
		// enriched or shown.
		state = StateCancelled
		m.queue.Push(StatusChanged{Text: fmt.Sprintf("CSV import cancelled after reading %d records. %d duplicates found, none loaded.", len(records), len(dups))})
		return
	}

	loaded := 0
	m.importer.setProgress(0, len(dups))
	for i, d := range dups {
		if m.importer.CancelRequested() {
			cancelled = true
			break
		}

		d.Duration = m.probe(d.Record.FullPath())
		if !m.session.publish(gen, d) {
			break
		}
		loaded = i + 1
		metrics.DuplicatesLoaded.Set(float64(loaded))
		m.queue.Push(RowInserted{Row: d})
		m.importer.setProgress(loaded, len(dups))

		if loaded%m.opts.EnrichInterval == 0 {
			m.queue.Push(StatusChanged{Text: fmt.Sprintf("Processed %d/%d duplicates...", loaded, len(dups))})
		}
	}

	if cancelled {
		state = StateCancelled
		m.queue.Push(StatusChanged{Text: fmt.Sprintf("CSV import cancelled. %d of %d duplicates loaded.", loaded, len(dups))})
		return
	}

	state = StateCompleted
	m.queue.Push(StatusChanged{Text: fmt.Sprintf("Import complete. %d duplicates found.", loaded)})
}

// ingest reads every accepted record. It stops early, without error, when a
// cancel is requested.
func (m *Manager) ingest(gen uint64, path string) ([]inventory.Record, bool, error) {
	file, err := m.open(path)
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	reader := inventory.NewReader(file)
	var records []inventory.Record
	cancelled := false
	lastReported := 0

	defer func() {
		metrics.ImportRowsTotal.WithLabelValues("accepted").Add(float64(reader.Accepted()))
		metrics.ImportRowsTotal.WithLabelValues("skipped").Add(float64(reader.Skipped()))
		m.session.setStats(gen, func(s *ImportStats) {
			s.Rows = reader.Rows()
			s.Accepted = reader.Accepted()
			s.Skipped = reader.Skipped()
		})
	}()

	for {
		if m.importer.CancelRequested() {
			cancelled = true
			break
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, false, err
		}
		records = append(records, rec)

		if rows := reader.Rows(); rows-lastReported >= m.opts.RowInterval {
			lastReported = rows - rows%m.opts.RowInterval
			m.importer.setProgress(rows, 0)
			m.queue.Push(StatusChanged{Text: fmt.Sprintf("Imported %d rows...", lastReported)})
		}
	}

	m.queue.Push(StatusChanged{Text: fmt.Sprintf("Imported %d rows (%d skipped).", reader.Rows(), reader.Skipped())})
	return records, cancelled, nil
}

func openInventory(path string) (io.ReadCloser, error) {
	return filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
}

// probe resolves a duration. Every failure maps to an unknown duration.
func (m *Manager) probe(path string) dupes.Duration {
	if !filesystem.Exists(path) {
		metrics.ProbesTotal.WithLabelValues("not_found").Inc()
		return dupes.UnknownDuration()
	}

	seconds, err := m.opts.Prober.Probe(m.ctx, path)
	if err != nil {
		logging.Debug("Duration unavailable for %s: %v", path, err)
		return dupes.UnknownDuration()
	}
	return dupes.KnownDuration(seconds)
}

func (m *Manager) fail(message string) {
	m.queue.Push(ErrorRaised{Pipeline: Import, Message: message})
	m.queue.Push(StatusChanged{Text: message})
}
