// core/cem/imbalance.go
package cem

import (
	"math"

	"cohort-core/table"

	"gonum.org/v1/gonum/stat"
)

// CovariateBalance summarizes one numeric covariate's between-class gap.
type CovariateBalance struct {
	Name      string
	DiffMeans float64 // mean(treated) - mean(control)
	StdDiff   float64 // DiffMeans over the pooled standard deviation
}

// Imbalance is the multivariate L1 statistic plus per-covariate summaries.
// L1 is half the absolute difference between the class frequency
// distributions over the coarsened strata: 0 is perfect balance, 1 is
// complete separation.
type Imbalance struct {
	L1         float64
	Covariates []CovariateBalance
}

func measure(t *table.Table, cls []int, sigs []string, covs []string) Imbalance {
	var im Imbalance

	treatedN, controlN := 0, 0
	for _, c := range cls {
		if c == 1 {
			treatedN++
		} else {
			controlN++
		}
	}
	if treatedN == 0 || controlN == 0 {
		im.L1 = 1
		return im
	}

	counts := make(map[string][2]int)
	for i, sig := range sigs {
		c := counts[sig]
		c[cls[i]]++
		counts[sig] = c
	}
	sum := 0.0
	for _, c := range counts {
		sum += math.Abs(float64(c[0])/float64(controlN) - float64(c[1])/float64(treatedN))
	}
	im.L1 = sum / 2

	for _, name := range covs {
		if !t.IsNumeric(name) {
			continue
		}
		vals, err := t.FloatColumn(name)
		if err != nil {
			continue
		}
		var tv, cv []float64
		for i, v := range vals {
			if cls[i] == 1 {
				tv = append(tv, v)
			} else {
				cv = append(cv, v)
			}
		}
		diff := stat.Mean(tv, nil) - stat.Mean(cv, nil)
		pooled := math.Sqrt((stat.Variance(tv, nil) + stat.Variance(cv, nil)) / 2)
		cb := CovariateBalance{Name: name, DiffMeans: diff}
		if pooled > 0 {
			cb.StdDiff = diff / pooled
		}
		im.Covariates = append(im.Covariates, cb)
	}
	return im
}
