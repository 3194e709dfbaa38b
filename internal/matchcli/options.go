// internal/matchcli/options.go
package matchcli

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"cohort-core/coarsen"

	"cohort/internal/clibase"
	"cohort/internal/cliutil"
)

type Options struct {
	clibase.Common

	// Match-specific
	Seed            int64
	K2K             bool
	KeepAll         bool
	Rule            coarsen.Rule
	Exclude         []string
	Breaks          map[string][]float64
	NoMatchExitCode int
}

// excludeValue collects repeatable --exclude column names.
type excludeValue struct{ dst *[]string }

func (e *excludeValue) String() string { return "" }
func (e *excludeValue) Set(v string) error {
	*e.dst = append(*e.dst, v)
	return nil
}

// breaksValue parses repeatable --cut COL=v1,v2,... into explicit cutpoints.
type breaksValue struct{ dst *map[string][]float64 }

func (b *breaksValue) String() string { return "" }
func (b *breaksValue) Set(v string) error {
	name, list, ok := strings.Cut(v, "=")
	if !ok || name == "" || list == "" {
		return fmt.Errorf("want COL=v1,v2,..., got %q", v)
	}
	var cuts []float64
	for _, s := range strings.Split(list, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("bad cutpoint %q for %s", s, name)
		}
		cuts = append(cuts, f)
	}
	if *b.dst == nil {
		*b.dst = make(map[string][]float64)
	}
	(*b.dst)[name] = cuts
	return nil
}

func NewFlagSet(name string) *flag.FlagSet {
	return clibase.NewFlagSet(name, "coarsened exact matching over a covariate table")
}

func Parse() (Options, error) { return ParseArgs(NewFlagSet("cohort-match"), nil) }

func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options
	var rule string

	var c clibase.Common
	noHeader := clibase.Register(fs, &c)

	fs.Int64Var(&o.Seed, "seed", 42, "RNG seed for k2k subsampling [42]")
	fs.BoolVar(&o.K2K, "k2k", true, "subsample strata to equal class counts [true]")
	fs.BoolVar(&o.KeepAll, "keep-all", false, "report unmatched strata alongside matched ones [false]")
	fs.StringVar(&rule, "coarsen", "sturges", "automatic cutpoint rule: sturges | scott | fd [sturges]")
	fs.Var(&excludeValue{dst: &o.Exclude}, "exclude", "covariate column to ignore (repeatable)")
	fs.Var(&excludeValue{dst: &o.Exclude}, "x", "alias of --exclude")
	fs.Var(&breaksValue{dst: &o.Breaks}, "cut", "explicit cutpoints COL=v1,v2,... (repeatable)")
	fs.IntVar(&o.NoMatchExitCode, "no-match-exit-code", 1, "exit code when no stratum matches [1]")

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
		switch len(c.InputFiles) {
		case 1:
			c.Source = c.InputFiles[0]
			c.InputFiles = nil
		case 0:
			return o, fmt.Errorf("a covariate table is required (--source or one positional)")
		default:
			return o, fmt.Errorf("exactly one covariate table expected, got %d", len(c.InputFiles))
		}
	}
	r, err := coarsen.ParseRule(rule)
	if err != nil {
		return o, err
	}
	o.Rule = r

	o.Common = c
	return o, nil
}
