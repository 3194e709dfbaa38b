// internal/matchcli/options_test.go
package matchcli

import (
	"testing"

	"cohort-core/coarsen"

	"github.com/stretchr/testify/require"
)

func TestParseArgsDefaults(t *testing.T) {
	o, err := ParseArgs(NewFlagSet("cohort-match"), []string{"table.csv"})
	require.NoError(t, err)
	require.Equal(t, "table.csv", o.Source)
	require.Equal(t, int64(42), o.Seed)
	require.True(t, o.K2K)
	require.False(t, o.KeepAll)
	require.Equal(t, coarsen.Sturges, o.Rule)
	require.Equal(t, 1, o.NoMatchExitCode)
}

func TestParseArgsCutAndExclude(t *testing.T) {
	o, err := ParseArgs(NewFlagSet("cohort-match"), []string{
		"--source", "table.xlsx",
		"--cut", "AGE=50,65", "--cut", "SEQ_LENGTH=20",
		"-x", "PINSTATE", "--exclude", "SEX",
		"--coarsen", "fd", "--seed", "7",
	})
	require.NoError(t, err)
	require.Equal(t, map[string][]float64{"AGE": {50, 65}, "SEQ_LENGTH": {20}}, o.Breaks)
	require.Equal(t, []string{"PINSTATE", "SEX"}, o.Exclude)
	require.Equal(t, coarsen.FreedmanDiaconis, o.Rule)
	require.Equal(t, int64(7), o.Seed)
}

func TestParseArgsRejects(t *testing.T) {
	cases := [][]string{
		{},                                    // no table
		{"a.csv", "b.csv"},                    // two tables
		{"t.csv", "--cut", "AGE"},             // malformed cut
		{"t.csv", "--cut", "AGE=x"},           // non-numeric cut
		{"t.csv", "--coarsen", "equal-width"}, // unknown rule
	}
	for _, argv := range cases {
		_, err := ParseArgs(NewFlagSet("cohort-match"), argv)
		require.Error(t, err, "%v", argv)
	}
}
