package dupes

import (
	"fmt"
	"math"

	"dupe-checker/internal/inventory"
)

// Match records which keys made a record a duplicate.
type Match uint8

const (
	// MatchSize means another record has the same size.
	MatchSize Match = 1 << iota
	// MatchName means another record has the same lowercased name.
	MatchName
)

// Has reports whether m includes k.
func (m Match) Has(k Match) bool { return m&k != 0 }

func (m Match) String() string {
	switch m {
	case MatchSize:
		return "size"
	case MatchName:
		return "name"
	case MatchSize | MatchName:
		return "size+name"
	default:
		return "none"
	}
}

// Duration is a probed media duration. The zero value is unknown, which is a
// final answer rather than a pending one.
type Duration struct {
	Seconds float64
	Known   bool
}

// UnknownDuration is the result of a failed probe.
func UnknownDuration() Duration { return Duration{} }

// KnownDuration wraps a probed value.
func KnownDuration(seconds float64) Duration {
	return Duration{Seconds: seconds, Known: true}
}

// String renders MM:SS, or HH:MM:SS once the duration reaches an hour.
func (d Duration) String() string {
	if !d.Known || math.IsNaN(d.Seconds) || d.Seconds < 0 {
		return "Unknown"
	}
	total := int64(d.Seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Duplicate is a record promoted into the duplicate sequence.
type Duplicate struct {
	// Index is the stable position in the duplicate sequence.
	Index   int
	Record  inventory.Record
	Matched Match

	Duration Duration
	// Thumbnail holds JPEG bytes once a preview has been generated.
	Thumbnail []byte
}

// HasThumbnail reports whether a preview was generated.
func (d Duplicate) HasThumbnail() bool { return len(d.Thumbnail) > 0 }

// Key identifies a duplicate by name and directory.
func (d Duplicate) Key() string {
	return KeyOf(d.Record.Path, d.Record.Name)
}

// KeyOf builds the key of the file name in directory path.
func KeyOf(path, name string) string {
	return path + "\x00" + name
}
