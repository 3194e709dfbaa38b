// core/cohortdef/labels.go
package cohortdef

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"cohort-core/claims"
)

// Label is one patient's assigned cohort membership.
type Label struct {
	PatientID   string
	Class       int // 0 = narrow-only, 1 = switched after narrow exposure
	FirstSupply time.Time
}

func sorted(exp []Exposure) []Exposure {
	out := append([]Exposure(nil), exp...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Supplied.Equal(out[j].Supplied) {
			return out[i].Supplied.Before(out[j].Supplied)
		}
		return out[i].ItemCode < out[j].ItemCode
	})
	return out
}

func firstSupply(exp []Exposure) time.Time {
	min := exp[0].Supplied
	for _, e := range exp[1:] {
		if e.Supplied.Before(min) {
			min = e.Supplied
		}
	}
	return min
}

// NarrowOnly returns the patients whose every exposure is in the narrow set.
func NarrowOnly(h History, narrow ItemSet) History {
	out := make(History)
	for id, exp := range h {
		all := true
		for _, e := range exp {
			if !narrow.Has(e.ItemCode) {
				all = false
				break
			}
		}
		if all {
			out[id] = exp
		}
	}
	return out
}

// SwitchedAfter returns the patients with at least one narrow exposure whose
// first non-narrow supply comes after the date-sorted position 0; a patient
// who starts on a non-narrow drug is not a switcher.
func SwitchedAfter(h History, narrow ItemSet) History {
	out := make(History)
	for id, exp := range h {
		hasNarrow := false
		for _, e := range exp {
			if narrow.Has(e.ItemCode) {
				hasNarrow = true
				break
			}
		}
		if !hasNarrow {
			continue
		}
		firstOther := -1
		for i, e := range sorted(exp) {
			if !narrow.Has(e.ItemCode) {
				firstOther = i
				break
			}
		}
		if firstOther > 0 {
			out[id] = exp
		}
	}
	return out
}

// Labels builds the labelled cohort rows (class 0 = only, class 1 = after),
// sorted by patient ID for deterministic output.
func Labels(only, after History) []Label {
	out := make([]Label, 0, len(only)+len(after))
	for id, exp := range only {
		out = append(out, Label{PatientID: id, Class: 0, FirstSupply: firstSupply(exp)})
	}
	for id, exp := range after {
		out = append(out, Label{PatientID: id, Class: 1, FirstSupply: firstSupply(exp)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PatientID < out[j].PatientID })
	return out
}

// LoadLabels reads a labels CSV back in (PIN,CLASS,SPPLY_DT columns, any
// order), as written by the labelling step.
func LoadLabels(path string) ([]Label, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	cr := csv.NewReader(fh)
	cr.FieldsPerRecord = -1
	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	idx := map[string]int{}
	for i, name := range hdr {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"PIN", "CLASS", "SPPLY_DT"} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %s", path, name)
		}
	}

	var out []Label
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cls, err := strconv.Atoi(strings.TrimSpace(rec[idx["CLASS"]]))
		if err != nil || (cls != 0 && cls != 1) {
			return nil, fmt.Errorf("%s: bad CLASS %q for %s", path, rec[idx["CLASS"]], rec[idx["PIN"]])
		}
		dt, err := claims.ParseDate(rec[idx["SPPLY_DT"]])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, Label{PatientID: rec[idx["PIN"]], Class: cls, FirstSupply: dt})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no labels", path)
	}
	return out, nil
}

// Negatives returns the candidate IDs never exposed to the family drugs.
func Negatives(candidates map[string]struct{}, exposedEver map[string]struct{}) []string {
	var out []string
	for id := range candidates {
		if _, ok := exposedEver[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
