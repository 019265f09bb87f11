package inventory

import (
	"path/filepath"
)

// Record is one well-formed inventory row.
type Record struct {
	// ID is the ingestion ordinal, unique within one read.
	ID int
	// Line is the 1-based line of the row in the source file.
	Line int
	Name string
	// Path is the directory that contains the file.
	Path string
	Size float64
}

// FullPath joins the directory and the file name.
func (r Record) FullPath() string {
	return filepath.Join(r.Path, r.Name)
}
