// core/cem/cem.go

// Package cem implements coarsened exact matching over a covariate table
// with a binary CLASS column. Continuous covariates are coarsened into bins,
// rows are grouped by their joint coarsened signature, strata lacking either
// class are dropped, and the surviving strata are balanced one-to-one (k2k)
// or weighted (keep-all).
package cem

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"cohort-core/coarsen"
	"cohort-core/table"
)

var ErrNoMatches = errors.New("cem: no stratum contains both classes")

// Options control one matching run.
type Options struct {
	Exclude []string             // covariates ignored for matching
	Breaks  map[string][]float64 // explicit cutpoints, overriding Rule
	Rule    coarsen.Rule         // automatic cutpoint rule
	K2K     bool                 // subsample the larger class per stratum
	KeepAll bool                 // retain unmatched strata in Result.Strata
	Seed    int64                // RNG seed for k2k subsampling
}

// Stratum is one coarsened cell, with member row IDs per class.
type Stratum struct {
	Signature string
	Control   []string
	Treated   []string
}

// Result is the outcome of a matching run.
type Result struct {
	MatchedIDs []string
	Matched    *table.Table
	Weights    map[string]float64
	Strata     []Stratum

	TreatedTotal, ControlTotal     int
	TreatedMatched, ControlMatched int

	Pre, Post Imbalance
}

// signatures computes the coarsened profile of every row over the covariate
// columns (everything but CLASS and Exclude).
func signatures(t *table.Table, o Options) ([]string, []string, error) {
	skip := map[string]struct{}{table.ClassColumn: {}}
	for _, c := range o.Exclude {
		skip[c] = struct{}{}
	}
	var covs []string
	for _, c := range t.Columns {
		if _, ok := skip[c]; !ok {
			covs = append(covs, c)
		}
	}
	if len(covs) == 0 {
		return nil, nil, errors.New("cem: no covariates to match on")
	}

	parts := make([][]string, len(t.IDs))
	for i := range parts {
		parts[i] = make([]string, len(covs))
	}
	for j, name := range covs {
		if t.IsNumeric(name) {
			vals, err := t.FloatColumn(name)
			if err != nil {
				return nil, nil, err
			}
			cuts, ok := o.Breaks[name]
			if !ok {
				cuts = coarsen.Cutpoints(vals, o.Rule)
			}
			for i, v := range vals {
				parts[i][j] = strconv.Itoa(coarsen.Assign(v, cuts))
			}
			continue
		}
		raw, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		for i, s := range raw {
			parts[i][j] = s
		}
	}

	sigs := make([]string, len(t.IDs))
	for i, p := range parts {
		sigs[i] = strings.Join(p, "|")
	}
	return sigs, covs, nil
}

// Match runs coarsened exact matching on t.
func Match(t *table.Table, o Options) (*Result, error) {
	cls, err := t.Classes()
	if err != nil {
		return nil, err
	}
	sigs, covs, err := signatures(t, o)
	if err != nil {
		return nil, err
	}

	bysig := make(map[string]*Stratum)
	order := make(map[string]int, len(t.IDs)) // row position, for stable output
	res := &Result{Weights: make(map[string]float64)}
	for i, id := range t.IDs {
		order[id] = i
		s := bysig[sigs[i]]
		if s == nil {
			s = &Stratum{Signature: sigs[i]}
			bysig[sigs[i]] = s
		}
		if cls[i] == 1 {
			s.Treated = append(s.Treated, id)
			res.TreatedTotal++
		} else {
			s.Control = append(s.Control, id)
			res.ControlTotal++
		}
	}

	signatureList := make([]string, 0, len(bysig))
	for sig := range bysig {
		signatureList = append(signatureList, sig)
	}
	sort.Strings(signatureList)

	rng := rand.New(rand.NewSource(o.Seed))
	var matchedIDs []string
	for _, sig := range signatureList {
		s := bysig[sig]
		if len(s.Control) == 0 || len(s.Treated) == 0 {
			if o.KeepAll {
				res.Strata = append(res.Strata, *s)
			}
			continue
		}
		control, treated := s.Control, s.Treated
		if o.K2K {
			k := len(control)
			if len(treated) < k {
				k = len(treated)
			}
			control = subsample(control, k, rng, order)
			treated = subsample(treated, k, rng, order)
		}
		kept := Stratum{Signature: sig, Control: control, Treated: treated}
		res.Strata = append(res.Strata, kept)
		res.ControlMatched += len(control)
		res.TreatedMatched += len(treated)
		matchedIDs = append(matchedIDs, control...)
		matchedIDs = append(matchedIDs, treated...)

		for _, id := range treated {
			res.Weights[id] = 1
		}
		cw := 1.0
		if !o.K2K {
			cw = float64(len(treated)) / float64(len(control)) // scaled below
		}
		for _, id := range control {
			res.Weights[id] = cw
		}
	}
	if res.TreatedMatched == 0 {
		return nil, fmt.Errorf("%w (%d treated / %d control in input)", ErrNoMatches, res.TreatedTotal, res.ControlTotal)
	}

	// CEM control weights carry the global matched-class ratio.
	if !o.K2K {
		scale := float64(res.ControlMatched) / float64(res.TreatedMatched)
		for _, s := range res.Strata {
			if len(s.Control) == 0 || len(s.Treated) == 0 {
				continue
			}
			for _, id := range s.Control {
				res.Weights[id] *= scale
			}
		}
	}

	sort.Slice(matchedIDs, func(i, j int) bool { return order[matchedIDs[i]] < order[matchedIDs[j]] })
	res.MatchedIDs = matchedIDs
	res.Matched = t.Subset(matchedIDs)

	res.Pre = measure(t, cls, sigs, covs)
	matched := make(map[string]struct{}, len(matchedIDs))
	for _, id := range matchedIDs {
		matched[id] = struct{}{}
	}
	var pcls []int
	var psigs []string
	pt := res.Matched
	for i, id := range t.IDs {
		if _, ok := matched[id]; ok {
			pcls = append(pcls, cls[i])
			psigs = append(psigs, sigs[i])
		}
	}
	res.Post = measure(pt, pcls, psigs, covs)
	return res, nil
}

// subsample keeps k of ids, chosen uniformly, returned in original row order.
func subsample(ids []string, k int, rng *rand.Rand, order map[string]int) []string {
	if k >= len(ids) {
		return ids
	}
	shuffled := append([]string(nil), ids...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	kept := shuffled[:k]
	sort.Slice(kept, func(i, j int) bool { return order[kept[i]] < order[kept[j]] })
	return kept
}
