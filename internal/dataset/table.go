package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-sod/knn/internal/geom"
)

var (
	ErrEmptyTable    = fmt.Errorf("table has no header")
	ErrUnknownColumn = fmt.Errorf("unknown column")
	ErrMissingValue  = fmt.Errorf("missing value")
)

var missingTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"none": {},
}

// IsMissing reports whether a raw cell holds no value.
func IsMissing(cell string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

// Table is a CSV file whose first column is a row index. Cells are kept as
// read so that untouched values are written back verbatim.
type Table struct {
	IndexName string
	Columns   []string
	Index     []string
	Records   [][]string
}

// ReadCSV reads a header row followed by data rows. Every row must have as
// many cells as the header.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header needs an index and at least one column, got %d cells", len(header))
	}

	t := &Table{
		IndexName: header[0],
		Columns:   append([]string(nil), header[1:]...),
	}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(t.Records)+1, err)
		}
		t.Index = append(t.Index, row[0])
		t.Records = append(t.Records, append([]string(nil), row[1:]...))
	}
	return t, nil
}

// WriteCSV writes the header, index and records of t.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{t.IndexName}, t.Columns...)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range t.Records {
		if err := writer.Write(append([]string{t.Index[i]}, rec...)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (t *Table) Len() int {
	return len(t.Records)
}

// ColumnIndex resolves a column by header name.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q: %w", name, ErrUnknownColumn)
}

// ResolveColumn prefers name and falls back to position.
func (t *Table) ResolveColumn(name string, position int) (int, error) {
	if name != "" {
		return t.ColumnIndex(name)
	}
	if position < 0 || position >= len(t.Columns) {
		return -1, fmt.Errorf("position %d of %d columns: %w", position, len(t.Columns), ErrUnknownColumn)
	}
	return position, nil
}

func (t *Table) IsMissing(row, col int) bool {
	return IsMissing(t.Records[row][col])
}

// Float parses a cell. Missing cells return NaN and ErrMissingValue.
func (t *Table) Float(row, col int) (float64, error) {
	cell := t.Records[row][col]
	if IsMissing(cell) {
		return math.NaN(), fmt.Errorf("row %s column %q: %w", t.Index[row], t.Columns[col], ErrMissingValue)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return math.NaN(), fmt.Errorf("row %s column %q: %w", t.Index[row], t.Columns[col], err)
	}
	return v, nil
}

// Point builds the feature vector of a row from every column except
// exclude.
func (t *Table) Point(row, exclude int) (geom.Point, error) {
	p := make(geom.Point, 0, len(t.Columns)-1)
	for col := range t.Columns {
		if col == exclude {
			continue
		}
		v, err := t.Float(row, col)
		if err != nil {
			return nil, err
		}
		p = append(p, v)
	}
	return p, nil
}

func (t *Table) Set(row, col int, value string) {
	t.Records[row][col] = value
}
