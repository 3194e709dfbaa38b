// internal/runapp/app.go

// Package runapp drives the full study pipeline from one YAML config,
// invoking the individual tools in process.
package runapp

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"cohort/internal/cmdutil"
	"cohort/internal/config"
	"cohort/internal/extractapp"
	"cohort/internal/labelapp"
	"cohort/internal/logging"
	"cohort/internal/matchapp"
	"cohort/internal/runcli"
	"cohort/internal/tableapp"
	"cohort/internal/version"

	"go.uber.org/zap"
)

type step struct {
	name string
	run  func(context.Context, []string, io.Writer, io.Writer) int
	argv func(*config.Pipeline) []string
}

var steps = []step{
	{
		name: "label",
		run:  labelapp.RunContext,
		argv: func(p *config.Pipeline) []string {
			argv := []string{
				"--root", p.Root,
				"--narrow", p.NarrowItems,
				"--family", p.FamilyItems,
				"--year", strconv.Itoa(p.TargetYear),
				"--jobs", strconv.Itoa(p.Jobs),
				"--output", p.LabelsOut,
			}
			if p.Copayment > 0 {
				argv = append(argv, "--copayment", strconv.FormatFloat(p.Copayment, 'f', -1, 64))
			}
			return argv
		},
	},
	{
		name: "extract",
		run:  extractapp.RunContext,
		argv: func(p *config.Pipeline) []string {
			return []string{
				"--root", p.Root,
				"--source", p.LabelsOut,
				"--window-years", strconv.Itoa(p.WindowYears),
				"--jobs", strconv.Itoa(p.Jobs),
				"--output", p.SequencesOut,
			}
		},
	},
	{
		name: "table",
		run:  tableapp.RunContext,
		argv: func(p *config.Pipeline) []string {
			return []string{
				"--labels", p.LabelsOut,
				"--sequences", p.SequencesOut,
				"--output", p.TableOut,
			}
		},
	},
	{
		name: "match",
		run:  matchapp.RunContext,
		argv: func(p *config.Pipeline) []string {
			return []string{
				"--source", p.TableOut,
				"--seed", strconv.FormatInt(p.Seed, 10),
				"--output", p.MatchedOut,
			}
		},
	},
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriterSize(stdout, 64<<10)

	fs := runcli.NewFlagSet("cohort-run")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
	}
	opts, err := runcli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
		}
		fmt.Fprintln(stderr, err)
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitUsage)
	}
	if opts.Version {
		fmt.Fprintf(outw, "cohort-run version %s\n", version.Version)
		return cmdutil.FlushExit(outw, stderr, cmdutil.ExitOK)
	}

	log := logging.NewWriter(stderr, opts.Quiet, opts.Verbose)
	defer func() { _ = log.Sync() }()

	pipe, err := config.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.InputExit(err)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	for _, s := range steps {
		if !pipe.Has(s.name) {
			log.Debug("step disabled", zap.String("step", s.name))
			continue
		}
		stepArgv := s.argv(pipe)
		if opts.Quiet {
			stepArgv = append(stepArgv, "--quiet")
		}
		if opts.Verbose {
			stepArgv = append(stepArgv, "--verbose")
		}
		log.Info("running step", zap.String("step", s.name), zap.Strings("argv", stepArgv))
		if code := s.run(ctx, stepArgv, outw, stderr); code != cmdutil.ExitOK {
			log.Error("step failed, aborting pipeline",
				zap.String("step", s.name), zap.Int("exit_code", code))
			_ = outw.Flush()
			return code
		}
	}
	return cmdutil.FlushExit(outw, stderr, cmdutil.ExitOK)
}
