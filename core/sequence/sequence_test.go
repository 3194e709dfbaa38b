// core/sequence/sequence_test.go
package sequence

import (
	"strings"
	"testing"
	"time"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestTimespanCode(t *testing.T) {
	cases := []struct {
		days, want int
	}{
		{0, 0}, {14, 0}, {15, 1}, {30, 1}, {31, 2}, {90, 2}, {91, 3}, {360, 3}, {361, 4},
	}
	for _, c := range cases {
		got, err := TimespanCode(c.days)
		if err != nil || got != c.want {
			t.Errorf("TimespanCode(%d) = %d, %v; want %d", c.days, got, err, c.want)
		}
	}
	if _, err := TimespanCode(-1); err == nil {
		t.Error("negative span must error")
	}
}

func visitsEvery(n int, start time.Time, stepDays int) []Visit {
	vs := make([]Visit, n)
	for i := range vs {
		vs[i] = Visit{Item: "23", Date: start.AddDate(0, 0, i*stepDays), PINState: "NSW"}
	}
	return vs
}

func TestBuildTooShort(t *testing.T) {
	p := Patient{ID: "x", Start: d(2012, 1, 1), End: d(2013, 1, 1), YearOfBirth: 1950}
	if _, ok := Build(p, visitsEvery(MinLength, d(2012, 2, 1), 7)); ok {
		t.Fatal("exactly MinLength visits must be dropped")
	}
	if _, ok := Build(p, visitsEvery(MinLength+1, d(2012, 2, 1), 7)); !ok {
		t.Fatal("MinLength+1 visits must be kept")
	}
}

func TestBuildWindowClamp(t *testing.T) {
	p := Patient{ID: "x", Start: d(2012, 1, 1), End: d(2012, 6, 1), YearOfBirth: 1950}
	vs := visitsEvery(30, d(2011, 12, 1), 7) // some fall before Start / after End
	row, ok := Build(p, vs)
	if !ok {
		t.Fatal("expected a row")
	}
	if row.Length >= 30 {
		t.Errorf("window not applied, length %d", row.Length)
	}
}

func TestBuildSequenceShape(t *testing.T) {
	p := Patient{ID: "x", Sex: "F", Start: d(2012, 1, 1), End: d(2013, 1, 1), YearOfBirth: 1950}
	vs := visitsEvery(12, d(2012, 2, 1), 20)
	row, ok := Build(p, vs)
	if !ok {
		t.Fatal("expected a row")
	}
	fields := strings.Fields(row.Seq)
	// items at even positions, gaps at odd, item count = Length
	if len(fields) != 2*row.Length-1 {
		t.Fatalf("field count %d for length %d", len(fields), row.Length)
	}
	for i := 1; i < len(fields); i += 2 {
		if fields[i] != "20" {
			t.Fatalf("gap %q at position %d", fields[i], i)
		}
	}
	enc := strings.Fields(row.EncodedSeq)
	for i := 1; i < len(enc); i += 2 {
		if enc[i] != "1" { // 20 days → bucket 1
			t.Fatalf("encoded gap %q", enc[i])
		}
	}
	if row.LastPINState != "NSW" || row.Sex != "F" {
		t.Errorf("covariates: %+v", row)
	}
	if row.AvgAge != 62 { // every visit in 2012, YOB 1950
		t.Errorf("avg age %v", row.AvgAge)
	}
}

func TestBuildUnsortedInput(t *testing.T) {
	p := Patient{ID: "x", Start: d(2012, 1, 1), End: d(2013, 1, 1), YearOfBirth: 1950}
	vs := visitsEvery(12, d(2012, 2, 1), 20)
	// reverse order; Build must sort by date
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
	row, ok := Build(p, vs)
	if !ok {
		t.Fatal("expected a row")
	}
	if strings.Contains(row.Seq, "-") {
		t.Fatalf("negative gap leaked into %q", row.Seq)
	}
}
