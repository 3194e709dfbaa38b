// internal/runcli/options.go
package runcli

import (
	"flag"
	"fmt"

	"cohort/internal/clibase"
	"cohort/internal/cliutil"
)

type Options struct {
	clibase.Common

	ConfigFile string
}

func NewFlagSet(name string) *flag.FlagSet {
	return clibase.NewFlagSet(name, "run the labelling, extraction, table and matching steps from one config")
}

func Parse() (Options, error) { return ParseArgs(NewFlagSet("cohort-run"), nil) }

func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options

	var c clibase.Common
	noHeader := clibase.Register(fs, &c)

	fs.StringVar(&o.ConfigFile, "config", "", "pipeline YAML config [required]")
	fs.StringVar(&o.ConfigFile, "c", "", "alias of --config")

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
	if o.ConfigFile == "" {
		switch len(c.InputFiles) {
		case 1:
			o.ConfigFile = c.InputFiles[0]
			c.InputFiles = nil
		case 0:
			return o, fmt.Errorf("--config is required")
		default:
			return o, fmt.Errorf("exactly one config file expected, got %d", len(c.InputFiles))
		}
	}

	o.Common = c
	return o, nil
}
