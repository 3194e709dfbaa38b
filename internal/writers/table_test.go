// internal/writers/table_test.go
package writers

import (
	"bytes"
	"testing"

	"cohort-core/table"

	"github.com/stretchr/testify/require"
)

func sampleTable() *table.Table {
	return &table.Table{
		IndexName: "PIN",
		Columns:   []string{"AGE", "CLASS"},
		IDs:       []string{"p1", "p2"},
		Rows:      [][]string{{"63", "0"}, {"58", "1"}},
	}
}

func TestWriteTableCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable("csv", &buf, sampleTable(), true))
	require.Equal(t, "PIN,AGE,CLASS\np1,63,0\np2,58,1\n", buf.String())
}

func TestWriteTableTSVNoHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable("tsv", &buf, sampleTable(), false))
	require.Equal(t, "p1\t63\t0\np2\t58\t1\n", buf.String())
}

func TestWriteTableJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable("jsonl", &buf, sampleTable(), true))
	require.Contains(t, buf.String(), `"PIN":"p1"`)
	require.Contains(t, buf.String(), `"CLASS":"1"`)
}

func TestWriteTableUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, WriteTable("parquet", &buf, sampleTable(), true))
}
