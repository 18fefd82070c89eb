package dataset

import (
	"fmt"
	"math"
)

// Table is an ordered set of named float64 columns of equal length.
// Gaps (unmeasured cells) are represented as NaN.
type Table struct {
	cols  []string
	index map[string]int
	data  [][]float64 // column-major, data[c][r]
}

// New creates a Table with the given columns and row count, every cell
// initialized to NaN.
func New(cols []string, rows int) *Table {
	t := &Table{
		cols:  append([]string(nil), cols...),
		index: make(map[string]int, len(cols)),
		data:  make([][]float64, len(cols)),
	}
	for i, c := range cols {
		t.index[c] = i
		col := make([]float64, rows)
		for r := range col {
			col[r] = math.NaN()
		}
		t.data[i] = col
	}
	return t
}

// FromRows builds a Table from row-major values. Every row must have
// one value per column.
func FromRows(cols []string, rows [][]float64) (*Table, error) {
	t := New(cols, len(rows))
	for r, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("dataset: row %d has %d values, want %d", r, len(row), len(cols))
		}
		for c := range cols {
			t.data[c][r] = row[c]
		}
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.data) == 0 {
		return 0
	}
	return len(t.data[0])
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column's values, or false if absent.
// The slice is the table's backing storage; callers must not resize it.
func (t *Table) Column(name string) ([]float64, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.data[i], true
}

// Set writes one cell.
func (t *Table) Set(name string, row int, v float64) {
	if i, ok := t.index[name]; ok {
		t.data[i][row] = v
	}
}

// Matrix extracts the named columns as a row-major matrix.
// Returns an error if any column is absent.
func (t *Table) Matrix(features []string) ([][]float64, error) {
	cols := make([][]float64, len(features))
	for i, f := range features {
		c, ok := t.Column(f)
		if !ok {
			return nil, fmt.Errorf("dataset: missing column %q", f)
		}
		cols[i] = c
	}
	rows := make([][]float64, t.Len())
	for r := range rows {
		row := make([]float64, len(features))
		for c := range features {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return rows, nil
}

// Labels reads the named column as binary class labels.
// Any value > 0.5 is class 1, everything else class 0; NaN is an error.
func (t *Table) Labels(name string) ([]int, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("dataset: missing label column %q", name)
	}
	labels := make([]int, len(col))
	for i, v := range col {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("dataset: label column %q has NaN at row %d", name, i)
		}
		if v > 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}

// Reindex returns a new Table holding exactly the given columns in
// order, plus the names of requested columns the receiver lacked
// (those come back as all-NaN columns).
func (t *Table) Reindex(features []string) (*Table, []string) {
	out := New(features, t.Len())
	var missing []string
	for _, f := range features {
		src, ok := t.Column(f)
		if !ok {
			missing = append(missing, f)
			continue
		}
		dst, _ := out.Column(f)
		copy(dst, src)
	}
	return out, missing
}

// FillGaps replaces NaN cells per column by forward-filling from the
// previous row, then zero-filling anything still unset (leading gaps
// and all-NaN columns).
func (t *Table) FillGaps() {
	for _, col := range t.data {
		last := math.NaN()
		for r, v := range col {
			if math.IsNaN(v) {
				if math.IsNaN(last) {
					col[r] = 0
				} else {
					col[r] = last
				}
				continue
			}
			last = v
		}
	}
}

// Select returns a new Table containing only the rows at the given
// indices, in that order.
func (t *Table) Select(rows []int) *Table {
	out := New(t.cols, len(rows))
	for c := range t.data {
		for i, r := range rows {
			out.data[c][i] = t.data[c][r]
		}
	}
	return out
}
