// core/coarsen/coarsen_test.go
package coarsen

import (
	"math"
	"testing"
)

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestParseRule(t *testing.T) {
	if r, err := ParseRule(""); err != nil || r != Sturges {
		t.Fatalf("default rule: %v %v", r, err)
	}
	if _, err := ParseRule("banana"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSturgesCutpointCount(t *testing.T) {
	// n=100 → ceil(log2 100)+1 = 8 bins → 7 cutpoints
	cuts := Cutpoints(seq(100), Sturges)
	if len(cuts) != 7 {
		t.Fatalf("want 7 cutpoints, got %d", len(cuts))
	}
	for i := 1; i < len(cuts); i++ {
		if cuts[i] <= cuts[i-1] {
			t.Fatal("cutpoints not ascending")
		}
	}
}

func TestConstantColumn(t *testing.T) {
	vals := []float64{5, 5, 5, 5}
	if cuts := Cutpoints(vals, Sturges); len(cuts) != 0 {
		t.Fatalf("constant column must give a single bin, got %v", cuts)
	}
	if cuts := Cutpoints(vals, Scott); len(cuts) != 0 {
		t.Fatalf("scott on constant column: %v", cuts)
	}
}

func TestScottAndFD(t *testing.T) {
	vals := seq(1000)
	for _, r := range []Rule{Scott, FreedmanDiaconis} {
		cuts := Cutpoints(vals, r)
		if len(cuts) == 0 {
			t.Fatalf("rule %v produced one bin for spread data", r)
		}
	}
}

func TestAssign(t *testing.T) {
	cuts := []float64{10, 20, 30}
	cases := []struct {
		v    float64
		want int
	}{
		{-5, 0}, {10, 0}, {10.5, 1}, {20, 1}, {29, 2}, {30, 2}, {31, 3}, {math.Inf(1), 3},
	}
	for _, c := range cases {
		if got := Assign(c.v, cuts); got != c.want {
			t.Errorf("Assign(%v) = %d, want %d", c.v, got, c.want)
		}
	}
	if Assign(42, nil) != 0 {
		t.Error("no cutpoints must mean bin 0")
	}
}

func TestAssignCoversAllValues(t *testing.T) {
	vals := seq(100)
	cuts := Cutpoints(vals, Sturges)
	for _, v := range vals {
		b := Assign(v, cuts)
		if b < 0 || b > len(cuts) {
			t.Fatalf("value %v out of range bin %d", v, b)
		}
	}
}
