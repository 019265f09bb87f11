package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	headerName = "Name"
	headerPath = "Path"
	headerSize = "Size"

	minColumns = 3
)

var (
	// ErrMalformedRow marks a row that was skipped.
	ErrMalformedRow = errors.New("malformed inventory row")
	// ErrInvalidEncoding is returned when the file is not valid UTF-8.
	ErrInvalidEncoding = errors.New("inventory is not valid UTF-8")
)

type columns struct {
	name, path, size int
}

func (c columns) width() int {
	return max(c.name, c.path, c.size) + 1
}

var positional = columns{name: 0, path: 1, size: 2}

// Reader yields records one row at a time.
type Reader struct {
	csv     *csv.Reader
	cols    columns
	started bool
	pending []string
	nextID  int
	rows    int
	skipped int
}

// NewReader wraps r. The layout is detected on the first call to Next.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &Reader{csv: cr, cols: positional}
}

// Next returns the next well-formed record, or io.EOF when the input is
// exhausted. Malformed rows are skipped silently.
func (r *Reader) Next() (Record, error) {
	for {
		fields, err := r.readRow()
		if err != nil {
			return Record{}, err
		}

		r.rows++
		line, _ := r.csv.FieldPos(0)
		rec, err := r.parse(fields)
		if err != nil {
			r.skipped++
			continue
		}
		rec.ID = r.nextID
		rec.Line = line
		r.nextID++
		return rec, nil
	}
}

// Rows returns the number of data rows read so far, skipped ones included.
func (r *Reader) Rows() int { return r.rows }

// Skipped returns the number of malformed rows dropped so far.
func (r *Reader) Skipped() int { return r.skipped }

// Accepted returns the number of records returned so far.
func (r *Reader) Accepted() int { return r.nextID }

func (r *Reader) readRow() ([]string, error) {
	if !r.started {
		r.started = true
		first, err := r.read()
		if err != nil {
			return nil, err
		}
		if len(first) > 0 {
			first[0] = strings.TrimPrefix(first[0], "\ufeff")
		}
		if cols, ok := detectHeader(first); ok {
			r.cols = cols
		} else {
			return first, nil
		}
	}
	return r.read()
}

func (r *Reader) read() ([]string, error) {
	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	for _, f := range fields {
		if !utf8.ValidString(f) {
			line, _ := r.csv.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, ErrInvalidEncoding)
		}
	}
	return fields, nil
}

func detectHeader(fields []string) (columns, bool) {
	cols := columns{name: -1, path: -1, size: -1}
	for i, f := range fields {
		switch strings.TrimSpace(f) {
		case headerName:
			cols.name = i
		case headerPath:
			cols.path = i
		case headerSize:
			cols.size = i
		}
	}
	if cols.name < 0 || cols.path < 0 || cols.size < 0 {
		return positional, false
	}
	return cols, true
}

func (r *Reader) parse(fields []string) (Record, error) {
	if len(fields) < minColumns || len(fields) < r.cols.width() {
		return Record{}, fmt.Errorf("%w: %d columns", ErrMalformedRow, len(fields))
	}
	size, err := ParseSize(fields[r.cols.size])
	if err != nil {
		return Record{}, err
	}
	return Record{
		Name: strings.TrimSpace(fields[r.cols.name]),
		Path: strings.TrimSpace(fields[r.cols.path]),
		Size: size,
	}, nil
}

// ParseSize parses a byte count. Fractional values are accepted since some
// inventory tools export sizes as floats.
func ParseSize(s string) (float64, error) {
	size, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: size %q", ErrMalformedRow, s)
	}
	if math.IsNaN(size) || math.IsInf(size, 0) || size < 0 {
		return 0, fmt.Errorf("%w: size %q", ErrMalformedRow, s)
	}
	return size, nil
}
