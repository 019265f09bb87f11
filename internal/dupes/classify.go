package dupes

import (
	"strings"

	"dupe-checker/internal/inventory"
)

// Policy tunes the duplicate key rules.
type Policy struct {
	// MatchEmptyNames lets records with an empty name match each other by
	// name. Off by default: inventories often leave the column blank for
	// unrelated files.
	MatchEmptyNames bool
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{}
}

// NameKey is the grouping key for a file name.
func NameKey(name string) string {
	return strings.ToLower(name)
}

// Classify returns the records that share a size or a lowercased name with at
// least one other record, in input order. Each record appears at most once.
func Classify(records []inventory.Record, policy Policy) []Duplicate {
	if len(records) < 2 {
		return nil
	}

	bySize := make(map[float64][]int, len(records))
	byName := make(map[string][]int, len(records))
	for i, rec := range records {
		bySize[rec.Size] = append(bySize[rec.Size], i)
		if rec.Name == "" && !policy.MatchEmptyNames {
			continue
		}
		key := NameKey(rec.Name)
		byName[key] = append(byName[key], i)
	}

	var out []Duplicate
	for i, rec := range records {
		var m Match
		if len(bySize[rec.Size]) > 1 {
			m |= MatchSize
		}
		if rec.Name != "" || policy.MatchEmptyNames {
			if len(byName[NameKey(rec.Name)]) > 1 {
				m |= MatchName
			}
		}
		if m == 0 {
			continue
		}
		out = append(out, Duplicate{
			Index:   len(out),
			Record:  records[i],
			Matched: m,
		})
	}
	return out
}

// Records strips a duplicate sequence back to its inventory records.
func Records(dups []Duplicate) []inventory.Record {
	out := make([]inventory.Record, len(dups))
	for i, d := range dups {
		out[i] = d.Record
	}
	return out
}
