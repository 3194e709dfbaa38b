// internal/writers/table.go
package writers

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"cohort-core/table"
)

func writeTableSep(w io.Writer, t *table.Table, header bool, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if header {
		if err := cw.Write(append([]string{t.IndexName}, t.Columns...)); err != nil {
			return err
		}
	}
	for i, id := range t.IDs {
		if err := cw.Write(append([]string{id}, t.Rows[i]...)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil && !IsBrokenPipe(err) {
		return err
	}
	return nil
}

func writeTableJSONL(w io.Writer, t *table.Table, _ bool) error {
	enc := json.NewEncoder(w)
	for i, id := range t.IDs {
		row := make(map[string]string, len(t.Columns)+1)
		row[t.IndexName] = id
		for j, c := range t.Columns {
			row[c] = t.Rows[i][j]
		}
		if err := enc.Encode(row); err != nil {
			if IsBrokenPipe(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

func init() {
	RegisterTable("csv", func(w io.Writer, t *table.Table, header bool) error {
		return writeTableSep(w, t, header, ',')
	})
	RegisterTable("tsv", func(w io.Writer, t *table.Table, header bool) error {
		return writeTableSep(w, t, header, '\t')
	})
	RegisterTable("jsonl", writeTableJSONL)
}
