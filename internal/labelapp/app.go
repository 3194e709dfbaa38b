// internal/labelapp/app.go
package labelapp

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"

	"cohort-core/claims"
	"cohort-core/cohortdef"

	"cohort/internal/cmdutil"
	"cohort/internal/labelcli"
	"cohort/internal/logging"
	"cohort/internal/version"
	"cohort/internal/writers"

	"go.uber.org/zap"
)

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriterSize(stdout, 64<<10)

	fs := labelcli.NewFlagSet("cohort-label")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
	}
	opts, err := labelcli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
		}
		fmt.Fprintln(stderr, err)
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitUsage)
	}
	if opts.Version {
		fmt.Fprintf(outw, "cohort-label version %s\n", version.Version)
		return cmdutil.FlushExit(outw, stderr, cmdutil.ExitOK)
	}

	log := logging.NewWriter(stderr, opts.Quiet, opts.Verbose)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	narrow, err := cohortdef.LoadItemSet(opts.NarrowFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.InputExit(err)
	}
	family, err := cohortdef.LoadItemSet(opts.FamilyFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.InputExit(err)
	}
	for code := range narrow {
		if !family.Has(code) {
			log.Warn("narrow item code missing from the family set", zap.String("item", code))
		}
	}

	files := opts.InputFiles
	if len(files) == 0 {
		files, err = claims.ListFiles(opts.Root, "PBS")
		if err != nil {
			fmt.Fprintln(stderr, err)
			return cmdutil.ExitRuntime
		}
		if len(files) == 0 {
			fmt.Fprintf(stderr, "no PBS_* prescription files under %s\n", opts.Root)
			return cmdutil.ExitUsage
		}
	}

	scan := cohortdef.NewScan()
	var scripts, familyScripts int
	for _, f := range files {
		year, ok := claims.YearFromFilename(f)
		if !ok {
			log.Warn("no extract year in filename, skipping", zap.String("file", f))
			continue
		}
		err := claims.ForEachPrescription(ctx, f, func(rx claims.Prescription) error {
			scripts++
			rx.ItemCode = cohortdef.NormalizeItem(rx.ItemCode)
			if !family.Has(rx.ItemCode) {
				return nil
			}
			if !cohortdef.CopaymentKeep(rx, opts.Copayment) {
				return nil
			}
			scan.Add(year, rx)
			familyScripts++
			return nil
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return 130
			}
			fmt.Fprintln(stderr, err)
			return cmdutil.ExitRuntime
		}
		log.Debug("scanned prescription file", zap.String("file", f), zap.Int("year", year))
	}
	log.Info("prescription scan done",
		zap.Int("files", len(files)),
		zap.Ints("years", scan.Years()),
		zap.Int("scripts", scripts),
		zap.Int("family_scripts", familyScripts))

	first := scan.FirstExposed(opts.TargetYear)
	only := cohortdef.NarrowOnly(first, narrow)
	after := cohortdef.SwitchedAfter(first, narrow)
	labels := cohortdef.Labels(only, after)
	log.Info("cohort labelled",
		zap.Int("year", opts.TargetYear),
		zap.Int("first_exposed", len(first)),
		zap.Int("narrow_only", len(only)),
		zap.Int("switched", len(after)))

	if opts.NegativesFile != "" {
		if code := writeNegatives(opts, scan, stderr, log); code != cmdutil.ExitOK {
			return code
		}
	}

	out, closeOut, err := cmdutil.OpenOutput(opts.Output, outw)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitRuntime
	}
	ch, werrc, err := writers.StartLabelWriter(out, opts.Format, opts.Header, 1024)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitUsage
	}
	for _, l := range labels {
		ch <- l
	}
	close(ch)
	werr := <-werrc
	if cerr := closeOut(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		fmt.Fprintln(stderr, werr)
		return cmdutil.ExitRuntime
	}
	if code := cmdutil.FlushExit(outw, stderr, cmdutil.ExitOK); code != cmdutil.ExitOK {
		return code
	}
	if len(labels) == 0 {
		log.Warn("no patients matched the cohort definition")
		return cmdutil.ExitNoRows
	}
	return cmdutil.ExitOK
}

// writeNegatives emits the patients of the SAMPLE_* population never exposed
// to the drug family, one PIN per line.
func writeNegatives(opts labelcli.Options, scan *cohortdef.Scan, stderr io.Writer, log *zap.Logger) int {
	files, err := claims.ListFiles(opts.Root, "SAMPLE")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitRuntime
	}
	if len(files) == 0 {
		fmt.Fprintf(stderr, "no SAMPLE_* demographics files under %s\n", opts.Root)
		return cmdutil.ExitUsage
	}
	candidates := make(map[string]struct{})
	for _, f := range files {
		m, err := claims.LoadPersons(f)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return cmdutil.ExitRuntime
		}
		for id := range m {
			candidates[id] = struct{}{}
		}
	}
	neg := cohortdef.Negatives(candidates, scan.ExposedEver())

	out, closeOut, err := cmdutil.OpenOutput(opts.NegativesFile, io.Discard)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitRuntime
	}
	cw := csv.NewWriter(out)
	if opts.Header {
		_ = cw.Write([]string{"PIN"})
	}
	for _, id := range neg {
		_ = cw.Write([]string{id})
	}
	cw.Flush()
	werr := cw.Error()
	if cerr := closeOut(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		fmt.Fprintln(stderr, werr)
		return cmdutil.ExitRuntime
	}
	log.Info("negative samples written",
		zap.Int("population", len(candidates)),
		zap.Int("negatives", len(neg)),
		zap.String("file", opts.NegativesFile))
	return cmdutil.ExitOK
}
