// core/table/csv.go
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Read parses a CSV with a header row; the first header cell names the
// row-name index column and the remaining cells name covariates.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("table: need an index column and at least one covariate, got %d columns", len(header))
	}

	t := &Table{IndexName: header[0], Columns: append([]string(nil), header[1:]...)}
	seen := make(map[string]struct{})
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		id := rec[0]
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("table: duplicate row id %q", id)
		}
		seen[id] = struct{}{}
		t.IDs = append(t.IDs, id)
		t.Rows = append(t.Rows, append([]string(nil), rec[1:]...))
	}
	if len(t.IDs) == 0 {
		return nil, ErrEmpty
	}
	return t, nil
}

// Load reads a table from a CSV file on disk.
func Load(path string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	t, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Write emits the table as CSV, row names first.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{t.IndexName}, t.Columns...)); err != nil {
		return err
	}
	for i, id := range t.IDs {
		if err := cw.Write(append([]string{id}, t.Rows[i]...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the table to a CSV file, creating or truncating it.
func (t *Table) Save(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Write(fh); err != nil {
		_ = fh.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return fh.Close()
}
