// internal/labelcli/options.go
package labelcli

import (
	"flag"
	"fmt"

	"cohort/internal/clibase"
	"cohort/internal/cliutil"
)

type Options struct {
	clibase.Common

	// Label-specific
	NarrowFile    string  // first-line drug item codes, one per line
	FamilyFile    string  // whole drug family item codes
	TargetYear    int     // cohort entry year
	Copayment     float64 // minimum total cost to count an exposure (0 = keep all)
	NegativesFile string  // optional CSV of never-exposed patient IDs
}

func NewFlagSet(name string) *flag.FlagSet {
	return clibase.NewFlagSet(name, "assign exposure classes from prescription claims")
}

func Parse() (Options, error) { return ParseArgs(NewFlagSet("cohort-label"), nil) }

func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options

	var c clibase.Common
	noHeader := clibase.Register(fs, &c)

	fs.StringVar(&o.NarrowFile, "narrow", "", "CSV of first-line drug item codes [required]")
	fs.StringVar(&o.NarrowFile, "n", "", "alias of --narrow")
	fs.StringVar(&o.FamilyFile, "family", "", "CSV of the whole drug family item codes [required]")
	fs.StringVar(&o.FamilyFile, "f", "", "alias of --family")
	fs.IntVar(&o.TargetYear, "year", 2012, "cohort entry year [2012]")
	fs.IntVar(&o.TargetYear, "y", 2012, "alias of --year")
	fs.Float64Var(&o.Copayment, "copayment", 0, "minimum patient+benefit cost per script (0 = keep all) [0]")
	fs.StringVar(&o.NegativesFile, "negatives", "", "also write never-exposed patient IDs here (needs SAMPLE_* files under --root)")

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
	if o.NarrowFile == "" {
		return o, fmt.Errorf("--narrow is required")
	}
	if o.FamilyFile == "" {
		return o, fmt.Errorf("--family is required")
	}
	if c.Root == "" && len(c.InputFiles) == 0 {
		return o, fmt.Errorf("either --root or prescription claim files are required")
	}
	if o.TargetYear < 2008 || o.TargetYear > 2014 {
		return o, fmt.Errorf("--year %d outside the 2008-2014 extract range", o.TargetYear)
	}
	if o.Copayment < 0 {
		return o, fmt.Errorf("--copayment must be ≥ 0")
	}
	if o.NegativesFile != "" && c.Root == "" {
		return o, fmt.Errorf("--negatives needs --root to find the SAMPLE_* demographics files")
	}

	o.Common = c
	return o, nil
}
