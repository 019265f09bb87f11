package pipeline

import (
	"sync"

	"dupe-checker/internal/dupes"
)

// ImportStats summarizes the last import.
type ImportStats struct {
	Rows       int `json:"rows"`
	Accepted   int `json:"accepted"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
	Loaded     int `json:"loaded"`
	Unknown    int `json:"unknownDurations"`
}

// Session owns the duplicate sequence of the current import. Every import
// bumps the generation; writes tagged with an older generation are dropped.
type Session struct {
	mu           sync.RWMutex
	generation   uint64
	dups         []dupes.Duplicate
	previewIndex int
	stats        ImportStats
}

func newSession() *Session {
	return &Session{}
}

func (s *Session) reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.dups = nil
	s.previewIndex = 0
	s.stats = ImportStats{}
	return s.generation
}

// Generation returns the current import generation.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// publish appends an enriched duplicate. The caller guarantees d.Index is
// the next position.
func (s *Session) publish(gen uint64, d dupes.Duplicate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || d.Index != len(s.dups) {
		return false
	}
	s.dups = append(s.dups, d)
	s.stats.Loaded = len(s.dups)
	if !d.Duration.Known {
		s.stats.Unknown++
	}
	return true
}

// setThumbnail stores thumb and calls announce while still holding the
// lock, so the announcement is ordered before any later reset's events.
func (s *Session) setThumbnail(gen uint64, index int, thumb []byte, announce func(dupes.Duplicate)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || index < 0 || index >= len(s.dups) {
		return false
	}
	s.dups[index].Thumbnail = thumb
	if announce != nil {
		announce(s.dups[index])
	}
	return true
}

func (s *Session) setPreviewIndex(gen uint64, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.previewIndex = index
	}
}

func (s *Session) setStats(gen uint64, update func(*ImportStats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		update(&s.stats)
	}
}

// Len returns the number of loaded duplicates.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dups)
}

// At returns the duplicate at index.
func (s *Session) At(index int) (dupes.Duplicate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.dups) {
		return dupes.Duplicate{}, false
	}
	return s.dups[index], true
}

// Duplicates returns a copy of the loaded sequence.
func (s *Session) Duplicates() []dupes.Duplicate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]dupes.Duplicate, len(s.dups))
	copy(out, s.dups)
	return out
}

// PreviewIndex returns the first duplicate the preview stage has not
// processed yet.
func (s *Session) PreviewIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previewIndex
}

// Stats returns the counters of the current import.
func (s *Session) Stats() ImportStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
