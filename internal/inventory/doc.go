// Package inventory streams media inventory records out of a CSV file.
//
// Two layouts are accepted:
//   - Header-driven: the first row names the columns and must contain
//     "Name", "Path" and "Size" (case-sensitive). Other columns are ignored.
//   - Headerless: every row is positional, [name, path, size, ...].
//
// Rows with too few columns or a size that is not a finite, non-negative
// number are skipped and counted; they never abort a read. Structural CSV
// errors and invalid UTF-8 are returned as errors, since they mean the file
// itself cannot be decoded.
package inventory
