// internal/tableio/tableio_test.go
package tableio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(p, []byte("PIN,AGE,CLASS\np1,63,0\np2,58,1\n"), 0o644))

	tb, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 2, tb.Len())
	require.Equal(t, []string{"AGE", "CLASS"}, tb.Columns)
}

func TestLoadXLSX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "table.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"PIN", "AGE", "SEX", "CLASS"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"p1", 63, "F", 0}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"p2", 58, "M", 1}))
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	tb, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "PIN", tb.IndexName)
	require.Equal(t, []string{"p1", "p2"}, tb.IDs)

	cls, err := tb.Classes()
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, cls)

	ages, err := tb.FloatColumn("AGE")
	require.NoError(t, err)
	require.Equal(t, []float64{63, 58}, ages)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}
