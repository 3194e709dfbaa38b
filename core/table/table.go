// core/table/table.go
package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ClassColumn is the reserved column holding the binary cohort label.
const ClassColumn = "CLASS"

var (
	ErrEmpty   = errors.New("table: empty input")
	ErrNoClass = errors.New("table: missing CLASS column")
	ErrBadClass = errors.New("table: CLASS values must be 0 or 1")
)

// Table is a rectangular covariate table with named rows and columns.
// IDs holds the row-name index column; Columns excludes it.
type Table struct {
	IndexName string
	Columns   []string
	IDs       []string
	Rows      [][]string
}

func (t *Table) Len() int { return len(t.IDs) }

// ColumnIndex returns the position of name within Columns.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns the raw cells of one column in row order.
func (t *Table) Column(name string) ([]string, error) {
	j, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("table: no column %q", name)
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[j]
	}
	return out, nil
}

// FloatColumn parses one column as float64 values.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	raw, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("table: column %q row %q: %v", name, t.IDs[i], err)
		}
		out[i] = v
	}
	return out, nil
}

// IsNumeric reports whether every cell of the column parses as a float.
func (t *Table) IsNumeric(name string) bool {
	j, ok := t.ColumnIndex(name)
	if !ok {
		return false
	}
	for _, r := range t.Rows {
		if _, err := strconv.ParseFloat(strings.TrimSpace(r[j]), 64); err != nil {
			return false
		}
	}
	return len(t.Rows) > 0
}

// Classes validates and returns the CLASS column as 0/1 ints.
func (t *Table) Classes() ([]int, error) {
	j, ok := t.ColumnIndex(ClassColumn)
	if !ok {
		return nil, ErrNoClass
	}
	out := make([]int, len(t.Rows))
	for i, r := range t.Rows {
		switch strings.TrimSpace(r[j]) {
		case "0":
			out[i] = 0
		case "1":
			out[i] = 1
		default:
			return nil, fmt.Errorf("%w (row %q has %q)", ErrBadClass, t.IDs[i], r[j])
		}
	}
	return out, nil
}

// Subset returns a new table containing only the given row IDs,
// preserving the receiver's row order. Unknown IDs are ignored.
func (t *Table) Subset(ids []string) *Table {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := &Table{IndexName: t.IndexName, Columns: append([]string(nil), t.Columns...)}
	for i, id := range t.IDs {
		if _, ok := want[id]; !ok {
			continue
		}
		out.IDs = append(out.IDs, id)
		out.Rows = append(out.Rows, append([]string(nil), t.Rows[i]...))
	}
	return out
}

// Drop returns a copy of the table without the named columns.
func (t *Table) Drop(cols ...string) *Table {
	skip := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		skip[c] = struct{}{}
	}
	out := &Table{IndexName: t.IndexName, IDs: append([]string(nil), t.IDs...)}
	var keep []int
	for j, c := range t.Columns {
		if _, ok := skip[c]; ok {
			continue
		}
		keep = append(keep, j)
		out.Columns = append(out.Columns, c)
	}
	for _, r := range t.Rows {
		row := make([]string, len(keep))
		for k, j := range keep {
			row[k] = r[j]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
