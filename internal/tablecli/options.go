// internal/tablecli/options.go
package tablecli

import (
	"flag"
	"fmt"

	"cohort/internal/clibase"
	"cohort/internal/cliutil"
)

type Options struct {
	clibase.Common

	// Table-specific
	LabelsFile    string
	SequencesFile string
}

func NewFlagSet(name string) *flag.FlagSet {
	return clibase.NewFlagSet(name, "join labels and sequences into a covariate table")
}

func Parse() (Options, error) { return ParseArgs(NewFlagSet("cohort-table"), nil) }

func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options

	var c clibase.Common
	noHeader := clibase.Register(fs, &c)

	fs.StringVar(&o.LabelsFile, "labels", "", "labels CSV from cohort-label [required]")
	fs.StringVar(&o.LabelsFile, "l", "", "alias of --labels")
	fs.StringVar(&o.SequencesFile, "sequences", "", "sequences CSV from cohort-extract [required]")

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
	if o.LabelsFile == "" {
		return o, fmt.Errorf("--labels is required")
	}
	if o.SequencesFile == "" {
		return o, fmt.Errorf("--sequences is required")
	}

	o.Common = c
	return o, nil
}
