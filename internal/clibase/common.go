// internal/clibase/common.go
package clibase

import (
	"errors"
	"flag"
	"fmt"

	"cohort/internal/cliutil"
)

// Common holds the CLI fields shared by every cohort tool.
type Common struct {
	// Input
	Root       string   // dataset root folder with the raw claim extracts
	Source     string   // upstream CSV (labels, sequences, ... per tool)
	InputFiles []string // explicit claim files, bypassing Root scanning

	// Output
	Output string
	Format string // csv | tsv | jsonl
	Header bool   // true unless --no-header

	// Performance
	Jobs int

	// Misc
	Quiet   bool
	Verbose bool
	Version bool
}

// sliceValue appends each value to a *[]string (for repeatable --input).
type sliceValue struct{ dst *[]string }

func (s *sliceValue) String() string {
	if s.dst == nil {
		return ""
	}
	return fmt.Sprint(*s.dst)
}
func (s *sliceValue) Set(v string) error {
	*s.dst = append(*s.dst, v)
	return nil
}

// Register wires the shared flags onto fs and returns a pointer to the
// "no-header" bool the caller folds into Common.Header after parsing.
func Register(fs *flag.FlagSet, c *Common) *bool {
	// Inputs
	fs.StringVar(&c.Root, "root", "", "dataset root folder with raw claim extracts")
	fs.StringVar(&c.Root, "r", "", "alias of --root")
	fs.StringVar(&c.Source, "source", "", "upstream CSV produced by the previous step")
	fs.StringVar(&c.Source, "s", "", "alias of --source")
	inVal := &sliceValue{dst: &c.InputFiles}
	fs.Var(inVal, "input", "claim file(s) (repeatable); overrides --root scanning")
	fs.Var(inVal, "i", "alias of --input")

	// Output
	fs.StringVar(&c.Output, "output", "", "output file ('-' or empty = stdout)")
	fs.StringVar(&c.Output, "o", "", "alias of --output")
	fs.StringVar(&c.Format, "format", "csv", "output format: csv | tsv | jsonl [csv]")
	noHeader := false
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line [false]")

	// Performance
	fs.IntVar(&c.Jobs, "jobs", 0, "worker processes (0 = all CPUs) [0]")
	fs.IntVar(&c.Jobs, "j", 0, "alias of --jobs")

	// Misc
	fs.BoolVar(&c.Quiet, "quiet", false, "suppress non-essential log output [false]")
	fs.BoolVar(&c.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&c.Verbose, "verbose", false, "debug-level log output [false]")
	fs.BoolVar(&c.Version, "v", false, "print version and exit [false]")
	fs.BoolVar(&c.Version, "version", false, "print version and exit [false]")

	return &noHeader
}

// AfterParse finalizes header and expands positionals, then validates.
func AfterParse(fs *flag.FlagSet, c *Common, noHeader *bool, posArgs []string) error {
	c.Header = !*noHeader

	if len(posArgs) > 0 {
		exp, err := cliutil.ExpandPositionals(posArgs)
		if err != nil {
			return err
		}
		c.InputFiles = append(c.InputFiles, exp...)
	}
	return Validate(c)
}

// Validate applies shared CLI invariants used by all tools.
func Validate(c *Common) error {
	if c.Jobs < 0 {
		return errors.New("--jobs must be ≥ 0")
	}
	switch c.Format {
	case "csv", "tsv", "jsonl":
	default:
		return fmt.Errorf("invalid --format %q", c.Format)
	}
	if c.Quiet && c.Verbose {
		return errors.New("--quiet conflicts with --verbose")
	}
	return nil
}
