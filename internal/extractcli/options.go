// internal/extractcli/options.go
package extractcli

import (
	"flag"
	"fmt"

	"cohort/internal/clibase"
	"cohort/internal/cliutil"
)

type Options struct {
	clibase.Common

	// Extract-specific
	WindowYears int    // observation window length from the first supply
	PersonsFile string // demographics file; scanned from --root when empty
}

func NewFlagSet(name string) *flag.FlagSet {
	return clibase.NewFlagSet(name, "extract per-patient service sequences for a labelled cohort")
}

func Parse() (Options, error) { return ParseArgs(NewFlagSet("cohort-extract"), nil) }

func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options

	var c clibase.Common
	noHeader := clibase.Register(fs, &c)

	fs.IntVar(&o.WindowYears, "window-years", 2, "observation window from first supply, in years [2]")
	fs.IntVar(&o.WindowYears, "w", 2, "alias of --window-years")
	fs.StringVar(&o.PersonsFile, "persons", "", "demographics file (default: SAMPLE* under --root)")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return o, err
	}
	if c.Version {
		o.Common = c
		return o, nil
	}

	if err := clibase.AfterParse(fs, &c, noHeader, posArgs); err != nil {
		return o, err
	}
	if c.Source == "" {
		return o, fmt.Errorf("--source labels CSV is required")
	}
	if c.Root == "" && len(c.InputFiles) == 0 {
		return o, fmt.Errorf("either --root or service claim files are required")
	}
	if o.WindowYears <= 0 {
		return o, fmt.Errorf("--window-years must be positive")
	}
	if c.Root == "" && o.PersonsFile == "" {
		return o, fmt.Errorf("--persons is required when --root is not set")
	}

	o.Common = c
	return o, nil
}
