package dataset

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-sod/knn/internal/geom"
)

const sample = `,a,b,target
0,1.0,2.0,3.5
1,4,5,
2,7,NaN,9
`

func TestReadCSV(t *testing.T) {
	t.Parallel()
	table, err := ReadCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "target"}, table.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"0", "1", "2"}, table.Index); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
	if table.Len() != 3 {
		t.Errorf("len got: %d, expected: 3", table.Len())
	}
	if !table.IsMissing(1, 2) || !table.IsMissing(2, 1) || table.IsMissing(0, 2) {
		t.Errorf("missing cells detected incorrectly")
	}

	v, err := table.Float(0, 2)
	if err != nil || v != 3.5 {
		t.Errorf("float got: %v/%v, expected: 3.5", v, err)
	}
	v, err = table.Float(1, 2)
	if !errors.Is(err, ErrMissingValue) || !math.IsNaN(v) {
		t.Errorf("missing float got: %v/%v", v, err)
	}

	p, err := table.Point(0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(geom.Point{1, 2}, p); diff != "" {
		t.Errorf("point mismatch (-want +got):\n%s", diff)
	}
	if _, err := table.Point(2, 2); !errors.Is(err, ErrMissingValue) {
		t.Errorf("point with missing feature must fail, got %v", err)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "index_only", in: "idx\n0\n"},
		{name: "ragged", in: ",a,b\n0,1\n"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ReadCSV(strings.NewReader(test.in)); err == nil {
				t.Errorf("error expected for %q", test.in)
			}
		})
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	t.Parallel()
	table, err := ReadCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table.Set(1, 2, "4.5")
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := ",a,b,target\n0,1.0,2.0,3.5\n1,4,5,4.5\n2,7,NaN,9\n"
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_ResolveColumn(t *testing.T) {
	t.Parallel()
	table := &Table{Columns: []string{"a", "b", "c"}}
	tests := []struct {
		name     string
		column   string
		position int
		expected int
		err      bool
	}{
		{name: "by_name", column: "b", position: 0, expected: 1},
		{name: "by_position", position: 2, expected: 2},
		{name: "unknown_name", column: "z", err: true},
		{name: "out_of_range", position: 3, err: true},
	}
	for _, test := range tests {
		got, err := table.ResolveColumn(test.column, test.position)
		if test.err {
			if !errors.Is(err, ErrUnknownColumn) {
				t.Errorf("%s: error got %v", test.name, err)
			}
			continue
		}
		if err != nil || got != test.expected {
			t.Errorf("%s: got %d/%v, expected %d", test.name, got, err, test.expected)
		}
	}
}

func TestIsMissing(t *testing.T) {
	t.Parallel()
	for _, cell := range []string{"", " ", "NaN", "nan", "NA", "n/a", "NULL", "None"} {
		if !IsMissing(cell) {
			t.Errorf("%q must be missing", cell)
		}
	}
	for _, cell := range []string{"0", "nana", "-", "1e3"} {
		if IsMissing(cell) {
			t.Errorf("%q must not be missing", cell)
		}
	}
}
