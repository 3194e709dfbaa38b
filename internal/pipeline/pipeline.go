// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"cohort-core/claims"
	"cohort-core/sequence"
)

// Config controls the extraction pipeline.
type Config struct {
	Jobs int // number of worker goroutines (0 = all CPUs)
}

// ForEachRow streams extracted sequence rows to visit. It reads every
// service file once, keeps only visits of known patients, then fans the
// per-patient sequence build out over workers. visit runs on a single
// collector goroutine. The first error encountered is returned (including
// context cancellation); row order is unspecified.
func ForEachRow(
	ctx context.Context,
	cfg Config,
	serviceFiles []string,
	patients map[string]sequence.Patient,
	visit func(sequence.Row) error,
) error {
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	// Single pass over the claim files; grouping by patient must happen
	// before any window can be applied.
	visits := make(map[string][]sequence.Visit, len(patients))
	for _, path := range serviceFiles {
		err := claims.ForEachService(ctx, path, func(s claims.Service) error {
			if _, ok := patients[s.PatientID]; !ok {
				return nil
			}
			visits[s.PatientID] = append(visits[s.PatientID], sequence.Visit{
				Item: s.ItemCode, Date: s.Date, PINState: s.PINState,
			})
			return nil
		})
		if err != nil {
			return err
		}
	}

	ids := make([]string, 0, len(visits))
	for id := range visits {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	in := make(chan string, jobs*2)
	results := make(chan sequence.Row, jobs*2)

	var wg sync.WaitGroup
	wg.Add(jobs)
	for w := 0; w < jobs; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id, ok := <-in:
					if !ok {
						return
					}
					row, keep := sequence.Build(patients[id], visits[id])
					if !keep {
						continue
					}
					select {
					case results <- row:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	var (
		cerr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for row := range results {
			if cerr != nil {
				continue
			}
			if err := visit(row); err != nil {
				cerr = err
			}
		}
	}()

feed:
	for _, id := range ids {
		select {
		case <-ctx.Done():
			break feed
		case in <- id:
		}
	}

	close(in)
	wg.Wait()
	close(results)
	cwg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return cerr
}
