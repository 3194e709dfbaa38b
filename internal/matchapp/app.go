// internal/matchapp/app.go
package matchapp

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"cohort-core/cem"
	"cohort-core/table"

	"cohort/internal/cmdutil"
	"cohort/internal/logging"
	"cohort/internal/matchcli"
	"cohort/internal/tableio"
	"cohort/internal/version"
	"cohort/internal/writers"

	"go.uber.org/zap"
)

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriterSize(stdout, 64<<10)

	fs := matchcli.NewFlagSet("cohort-match")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
	}
	opts, err := matchcli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
		}
		fmt.Fprintln(stderr, err)
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitUsage)
	}
	if opts.Version {
		fmt.Fprintf(outw, "cohort-match version %s\n", version.Version)
		return cmdutil.FlushExit(outw, stderr, cmdutil.ExitOK)
	}

	log := logging.NewWriter(stderr, opts.Quiet, opts.Verbose)
	defer func() { _ = log.Sync() }()

	t, err := tableio.Load(opts.Source)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.InputExit(err)
	}

	res, err := cem.Match(t, cem.Options{
		Exclude: opts.Exclude,
		Breaks:  opts.Breaks,
		Rule:    opts.Rule,
		K2K:     opts.K2K,
		KeepAll: opts.KeepAll,
		Seed:    opts.Seed,
	})
	if err != nil {
		switch {
		case errors.Is(err, cem.ErrNoMatches):
			log.Warn("no stratum holds both classes", zap.Error(err))
			// Header-only output keeps downstream readers working.
			if code := writeMatched(t.Subset(nil), opts, outw, stderr); code != cmdutil.ExitOK {
				return code
			}
			return opts.NoMatchExitCode
		case errors.Is(err, table.ErrNoClass), errors.Is(err, table.ErrBadClass), errors.Is(err, table.ErrEmpty):
			fmt.Fprintln(stderr, err)
			return cmdutil.ExitUsage
		default:
			fmt.Fprintln(stderr, err)
			return cmdutil.ExitRuntime
		}
	}

	log.Info("matching done",
		zap.Int("strata", len(res.Strata)),
		zap.Int("treated_total", res.TreatedTotal),
		zap.Int("control_total", res.ControlTotal),
		zap.Int("treated_matched", res.TreatedMatched),
		zap.Int("control_matched", res.ControlMatched),
		zap.Float64("l1_pre", res.Pre.L1),
		zap.Float64("l1_post", res.Post.L1))
	for _, cov := range res.Post.Covariates {
		log.Debug("covariate balance after matching",
			zap.String("covariate", cov.Name),
			zap.Float64("diff_means", cov.DiffMeans),
			zap.Float64("std_diff", cov.StdDiff))
	}

	matched := res.Matched
	if !opts.K2K {
		matched = withWeights(matched, res.Weights)
	}
	return writeMatched(matched, opts, outw, stderr)
}

func writeMatched(matched *table.Table, opts matchcli.Options, outw *bufio.Writer, stderr io.Writer) int {
	out, closeOut, err := cmdutil.OpenOutput(opts.Output, outw)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitRuntime
	}
	werr := writers.WriteTable(opts.Format, out, matched, opts.Header)
	if cerr := closeOut(); werr == nil {
		werr = cerr
	}
	if werr != nil && !writers.IsBrokenPipe(werr) {
		fmt.Fprintln(stderr, werr)
		return cmdutil.ExitRuntime
	}
	return cmdutil.FlushExit(outw, stderr, cmdutil.ExitOK)
}

// withWeights appends the CEM weight column to a matched table. Only
// meaningful without k2k, where control weights differ from 1.
func withWeights(t *table.Table, weights map[string]float64) *table.Table {
	out := &table.Table{
		IndexName: t.IndexName,
		Columns:   append(append([]string(nil), t.Columns...), "WEIGHT"),
		IDs:       t.IDs,
	}
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		w := weights[t.IDs[i]]
		out.Rows[i] = append(append([]string(nil), row...), strconv.FormatFloat(w, 'f', 4, 64))
	}
	return out
}
