// internal/tableio/tableio.go

// Package tableio loads covariate tables by file extension: plain CSV via
// cohort-core/table, spreadsheets via excelize. Research teams hand these
// tables around in both shapes; the matching step should not care.
package tableio

import (
	"fmt"
	"path/filepath"
	"strings"

	"cohort-core/table"

	"github.com/xuri/excelize/v2"
)

// Load reads the covariate table at path, dispatching on the extension.
func Load(path string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadXLSX(path)
	default:
		return table.Load(path)
	}
}

func loadXLSX(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, table.ErrEmpty)
	}
	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: need an index column and at least one covariate", path)
	}

	t := &table.Table{IndexName: header[0], Columns: append([]string(nil), header[1:]...)}
	seen := make(map[string]struct{})
	for _, rec := range rows[1:] {
		if len(rec) == 0 {
			continue
		}
		// excelize trims trailing empty cells; pad back to the header width
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		id := rec[0]
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%s: duplicate row id %q", path, id)
		}
		seen[id] = struct{}{}
		t.IDs = append(t.IDs, id)
		t.Rows = append(t.Rows, append([]string(nil), rec[1:len(header)]...))
	}
	if len(t.IDs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, table.ErrEmpty)
	}
	return t, nil
}
