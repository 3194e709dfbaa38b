// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	p, err := Load(write(t, `
root: /data
family_items: items/family.csv
narrow_items: items/metformin.csv
`))
	require.NoError(t, err)
	require.Equal(t, 2012, p.TargetYear)
	require.Equal(t, int64(42), p.Seed)
	require.Equal(t, "tmp/matched_CEM_table.csv", p.MatchedOut)
	require.Equal(t, StepNames, p.Steps)
	require.True(t, p.Has("match"))
}

func TestLoadOverrides(t *testing.T) {
	p, err := Load(write(t, `
root: /data
target_year: 2010
seed: 7
steps: [table, match]
matched_out: out/matched.csv
`))
	require.NoError(t, err)
	require.Equal(t, 2010, p.TargetYear)
	require.Equal(t, int64(7), p.Seed)
	require.False(t, p.Has("label"))
	require.Equal(t, "out/matched.csv", p.MatchedOut)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"missing root":     "target_year: 2012\n",
		"bad year":         "root: /data\ntarget_year: 1999\nsteps: [match]\n",
		"unknown step":     "root: /data\nsteps: [train]\n",
		"label sans items": "root: /data\nsteps: [label]\n",
	}
	for name, body := range cases {
		_, err := Load(write(t, body))
		require.Error(t, err, name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
