// core/coarsen/coarsen.go

// Package coarsen computes cutpoints for continuous covariates and assigns
// values to the resulting bins. Automatic rules follow the usual histogram
// bin-width estimators; the Sturges rule is the default, matching the
// behaviour of coarsened-exact-matching implementations.
package coarsen

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Rule selects an automatic cutpoint algorithm.
type Rule int

const (
	Sturges Rule = iota
	Scott
	FreedmanDiaconis
)

func ParseRule(s string) (Rule, error) {
	switch s {
	case "sturges", "":
		return Sturges, nil
	case "scott":
		return Scott, nil
	case "fd":
		return FreedmanDiaconis, nil
	}
	return 0, fmt.Errorf("coarsen: unknown rule %q (sturges|scott|fd)", s)
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// iqr returns the interquartile range of values.
func iqr(values []float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	return stat.Quantile(0.75, stat.Empirical, s, nil) - stat.Quantile(0.25, stat.Empirical, s, nil)
}

// binCount translates a rule into a bin count for n values.
func binCount(values []float64, r Rule) int {
	n := len(values)
	lo, hi := minMax(values)
	span := hi - lo
	if span == 0 {
		return 1
	}
	var h float64
	switch r {
	case Scott:
		h = 3.49 * stat.StdDev(values, nil) * math.Pow(float64(n), -1.0/3.0)
	case FreedmanDiaconis:
		h = 2 * iqr(values) * math.Pow(float64(n), -1.0/3.0)
	default: // Sturges
		return int(math.Ceil(math.Log2(float64(n)))) + 1
	}
	if h <= 0 {
		return int(math.Ceil(math.Log2(float64(n)))) + 1
	}
	k := int(math.Ceil(span / h))
	if k < 1 {
		k = 1
	}
	return k
}

// Cutpoints returns ascending interior cut values for the rule; k bins give
// k-1 cutpoints. An empty slice means a single bin.
func Cutpoints(values []float64, r Rule) []float64 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := minMax(values)
	k := binCount(values, r)
	if k <= 1 || hi == lo {
		return nil
	}
	width := (hi - lo) / float64(k)
	cuts := make([]float64, k-1)
	for i := range cuts {
		cuts[i] = lo + width*float64(i+1)
	}
	return cuts
}

// Assign returns the bin index of v for ascending cutpoints: bin i holds
// values in (cuts[i-1], cuts[i]].
func Assign(v float64, cuts []float64) int {
	// cutpoint lists are short; linear scan beats binary search in practice
	for i, c := range cuts {
		if v <= c {
			return i
		}
	}
	return len(cuts)
}
