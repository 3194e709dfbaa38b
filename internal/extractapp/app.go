// internal/extractapp/app.go
package extractapp

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"cohort-core/claims"
	"cohort-core/cohortdef"
	"cohort-core/sequence"

	"cohort/internal/cmdutil"
	"cohort/internal/extractcli"
	"cohort/internal/logging"
	"cohort/internal/pipeline"
	"cohort/internal/version"
	"cohort/internal/writers"

	"go.uber.org/zap"
)

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriterSize(stdout, 64<<10)

	fs := extractcli.NewFlagSet("cohort-extract")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
	}
	opts, err := extractcli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitOK)
		}
		fmt.Fprintln(stderr, err)
		return cmdutil.UsageExit(fs, outw, stderr, cmdutil.ExitUsage)
	}
	if opts.Version {
		fmt.Fprintf(outw, "cohort-extract version %s\n", version.Version)
		return cmdutil.FlushExit(outw, stderr, cmdutil.ExitOK)
	}

	log := logging.NewWriter(stderr, opts.Quiet, opts.Verbose)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	labels, err := cohortdef.LoadLabels(opts.Source)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.InputExit(err)
	}

	persons, code := loadPersons(opts, stderr)
	if code != cmdutil.ExitOK {
		return code
	}

	serviceFiles := opts.InputFiles
	if len(serviceFiles) == 0 {
		serviceFiles, err = claims.ListFiles(opts.Root, "MBS")
		if err != nil {
			fmt.Fprintln(stderr, err)
			return cmdutil.ExitRuntime
		}
		if len(serviceFiles) == 0 {
			fmt.Fprintf(stderr, "no MBS_* service files under %s\n", opts.Root)
			return cmdutil.ExitUsage
		}
	}

	patients := make(map[string]sequence.Patient, len(labels))
	var missing int
	for _, l := range labels {
		p, ok := persons[l.PatientID]
		if !ok {
			missing++
			continue
		}
		patients[l.PatientID] = sequence.Patient{
			ID:          l.PatientID,
			Sex:         p.Sex,
			YearOfBirth: p.YearOfBirth,
			Start:       l.FirstSupply,
			End:         l.FirstSupply.AddDate(opts.WindowYears, 0, 0),
		}
	}
	if missing > 0 {
		log.Warn("labelled patients without demographics were dropped", zap.Int("count", missing))
	}
	log.Info("extraction window set",
		zap.Int("patients", len(patients)),
		zap.Int("window_years", opts.WindowYears),
		zap.Int("service_files", len(serviceFiles)))

	var rows []sequence.Row
	err = pipeline.ForEachRow(ctx, pipeline.Config{Jobs: opts.Jobs}, serviceFiles, patients,
		func(r sequence.Row) error {
			rows = append(rows, r)
			return nil
		})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitRuntime
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	log.Info("sequences extracted",
		zap.Int("rows", len(rows)),
		zap.Int("dropped_short", len(patients)-len(rows)))

	out, closeOut, err := cmdutil.OpenOutput(opts.Output, outw)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitRuntime
	}
	ch, werrc, err := writers.StartSequenceWriter(out, opts.Format, opts.Header, 1024)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitUsage
	}
	for _, r := range rows {
		ch <- r
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
	if len(rows) == 0 {
		log.Warn("no patient reached the minimum sequence length")
		return cmdutil.ExitNoRows
	}
	return cmdutil.ExitOK
}

// loadPersons reads the demographics file, or every SAMPLE_* file under the
// root when no explicit file is given.
func loadPersons(opts extractcli.Options, stderr io.Writer) (map[string]claims.Person, int) {
	if opts.PersonsFile != "" {
		persons, err := claims.LoadPersons(opts.PersonsFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return nil, cmdutil.InputExit(err)
		}
		return persons, cmdutil.ExitOK
	}
	files, err := claims.ListFiles(opts.Root, "SAMPLE")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return nil, cmdutil.ExitRuntime
	}
	if len(files) == 0 {
		fmt.Fprintf(stderr, "no SAMPLE_* demographics files under %s\n", opts.Root)
		return nil, cmdutil.ExitUsage
	}
	persons := make(map[string]claims.Person)
	for _, f := range files {
		m, err := claims.LoadPersons(f)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return nil, cmdutil.ExitRuntime
		}
		for id, p := range m {
			persons[id] = p
		}
	}
	return persons, cmdutil.ExitOK
}
