// internal/labelcli/options_test.go
package labelcli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgsDefaults(t *testing.T) {
	o, err := ParseArgs(NewFlagSet("cohort-label"),
		[]string{"--root", "/data", "--narrow", "met.csv", "--family", "diab.csv"})
	require.NoError(t, err)
	require.Equal(t, 2012, o.TargetYear)
	require.Zero(t, o.Copayment)
	require.True(t, o.Header)
	require.Equal(t, "csv", o.Format)
}

func TestParseArgsAliases(t *testing.T) {
	o, err := ParseArgs(NewFlagSet("cohort-label"),
		[]string{"-r", "/data", "-n", "met.csv", "-f", "diab.csv", "-y", "2010"})
	require.NoError(t, err)
	require.Equal(t, "/data", o.Root)
	require.Equal(t, 2010, o.TargetYear)
}

func TestParseArgsValidation(t *testing.T) {
	cases := [][]string{
		{"--root", "/data", "--family", "diab.csv"},                                        // no narrow
		{"--root", "/data", "--narrow", "met.csv"},                                         // no family
		{"--narrow", "met.csv", "--family", "diab.csv"},                                    // no input
		{"--root", "/data", "--narrow", "m.csv", "--family", "d.csv", "--year", "1999"},    // bad year
		{"--root", "/data", "--narrow", "m.csv", "--family", "d.csv", "--copayment", "-1"}, // bad cost
		{"-i", "PBS_2012.csv", "--narrow", "m.csv", "--family", "d.csv", "--negatives", "neg.csv"}, // negatives without root
	}
	for _, argv := range cases {
		_, err := ParseArgs(NewFlagSet("cohort-label"), argv)
		require.Error(t, err, "%v", argv)
	}
}

func TestParseArgsVersionSkipsValidation(t *testing.T) {
	o, err := ParseArgs(NewFlagSet("cohort-label"), []string{"--version"})
	require.NoError(t, err)
	require.True(t, o.Version)
}
