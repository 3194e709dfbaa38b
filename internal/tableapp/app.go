// internal/tableapp/app.go
package tableapp

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"cohort-core/cohortdef"
	"cohort-core/table"

	"cohort/internal/cmdutil"
	"cohort/internal/logging"
	"cohort/internal/tablecli"
	"cohort/internal/version"
	"cohort/internal/writers"

	"go.uber.org/zap"
)

// Covariates is the column layout of the matching table, CLASS last.
var Covariates = []string{"AGE", "SEX", "PINSTATE", "SEQ_LENGTH", table.ClassColumn}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriterSize(stdout, 64<<10)

	fs := tablecli.NewFlagSet("cohort-table")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
	}
	opts, err := tablecli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
		}
		fmt.Fprintln(stderr, err)
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitUsage)
	}
	if opts.Version {
		fmt.Fprintf(outw, "cohort-table version %s\n", version.Version)
		return cmdutil.FlushExit(outw, stderr, cmdutil.ExitOK)
	}

	log := logging.NewWriter(stderr, opts.Quiet, opts.Verbose)
	defer func() { _ = log.Sync() }()

	labels, err := cohortdef.LoadLabels(opts.LabelsFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.InputExit(err)
	}
	classOf := make(map[string]int, len(labels))
	for _, l := range labels {
		classOf[l.PatientID] = l.Class
	}

	seqs, err := table.Load(opts.SequencesFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.InputExit(err)
	}

	t, unlabelled, err := build(seqs, classOf)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitUsage
	}
	if unlabelled > 0 {
		log.Warn("sequence rows without a label were dropped", zap.Int("count", unlabelled))
	}
	log.Info("covariate table built",
		zap.Int("rows", t.Len()),
		zap.Int("labels", len(labels)),
		zap.Strings("columns", t.Columns))

	out, closeOut, err := cmdutil.OpenOutput(opts.Output, outw)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitRuntime
	}
	werr := writers.WriteTable(opts.Format, out, t, opts.Header)
	if cerr := closeOut(); werr == nil {
		werr = cerr
	}
	if werr != nil && !writers.IsBrokenPipe(werr) {
		fmt.Fprintln(stderr, werr)
		return cmdutil.ExitRuntime
	}
	if code := cmdutil.FlushExit(outw, stderr, cmdutil.ExitOK); code != cmdutil.ExitOK {
		return code
	}
	if t.Len() == 0 {
		log.Warn("no patient appears in both labels and sequences")
		return cmdutil.ExitNoRows
	}
	return cmdutil.ExitOK
}

// build joins the sequence rows with their class, keeping sequence file
// order. Sequence rows without a label are counted and dropped.
func build(seqs *table.Table, classOf map[string]int) (*table.Table, int, error) {
	need := map[string]int{}
	for _, name := range []string{"AVG_AGE", "SEX", "PINSTATE", "SEQ_LENGTH"} {
		i, ok := seqs.ColumnIndex(name)
		if !ok {
			return nil, 0, fmt.Errorf("sequences file: missing column %s", name)
		}
		need[name] = i
	}

	t := &table.Table{IndexName: seqs.IndexName, Columns: Covariates}
	unlabelled := 0
	for i, id := range seqs.IDs {
		cls, ok := classOf[id]
		if !ok {
			unlabelled++
			continue
		}
		row := seqs.Rows[i]
		t.IDs = append(t.IDs, id)
		t.Rows = append(t.Rows, []string{
			row[need["AVG_AGE"]],
			row[need["SEX"]],
			row[need["PINSTATE"]],
			row[need["SEQ_LENGTH"]],
			strconv.Itoa(cls),
		})
	}
	return t, unlabelled, nil
}
