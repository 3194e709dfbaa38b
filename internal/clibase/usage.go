// internal/clibase/usage.go
package clibase

import (
	"flag"
	"fmt"

	"cohort/internal/version"
)

// NewFlagSet returns a configured FlagSet with the shared usage banner.
func NewFlagSet(name, oneline string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: %s

Part of the cohort matching toolkit, version %s.

Usage of %s:
`, name, oneline, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}
