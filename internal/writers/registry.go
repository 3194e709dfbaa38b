// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"

	"cohort-core/table"
)

// TableWriters maps output formats to whole-table writers. Formats register
// themselves in init() blocks below.
var TableWriters = map[string]func(w io.Writer, t *table.Table, header bool) error{}

// RegisterTable installs a table writer (idempotent, last wins).
func RegisterTable(format string, fn func(io.Writer, *table.Table, bool) error) {
	TableWriters[format] = fn
}

// WriteTable dispatches one table to the given format.
func WriteTable(format string, w io.Writer, t *table.Table, header bool) error {
	fn, ok := TableWriters[format]
	if !ok {
		return fmt.Errorf("unknown table format %q (no writer registered)", format)
	}
	return fn(w, t, header)
}
