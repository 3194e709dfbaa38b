// core/cohortdef/cohortdef.go

// Package cohortdef assigns cohort labels from prescription histories.
//
// The study design: scan yearly prescription extracts for a broad drug
// family, keep the patients whose first family exposure falls in a target
// year, then split them on a narrower item set into an exposure-only cohort
// (label 0) and a switched/augmented cohort (label 1, some other family
// drug supplied after the first narrow-item supply).
package cohortdef

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"cohort-core/claims"
)

// ItemSet is a set of claim item codes.
type ItemSet map[string]struct{}

func (s ItemSet) Has(code string) bool { _, ok := s[code]; return ok }

// NormalizeItem pads short item codes with leading zeros to the 6-character
// notation used by the extracts.
func NormalizeItem(code string) string {
	code = strings.TrimSpace(code)
	for len(code) > 0 && len(code) < 6 {
		code = "0" + code
	}
	return code
}

// LoadItemSet reads a one-column CSV of item codes (header row required)
// and normalizes each code.
func LoadItemSet(path string) (ItemSet, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	cr := csv.NewReader(fh)
	cr.FieldsPerRecord = -1
	if _, err := cr.Read(); err != nil { // header
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	set := make(ItemSet)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		set[NormalizeItem(rec[0])] = struct{}{}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%s: no item codes", path)
	}
	return set, nil
}

// Exposure is one family-drug supply event.
type Exposure struct {
	ItemCode string
	Supplied time.Time
}

// History maps patient IDs to their family-drug exposures.
type History map[string][]Exposure

// Scan accumulates per-year exposure histories across prescription files.
type Scan struct {
	ByYear map[int]History
}

func NewScan() *Scan { return &Scan{ByYear: make(map[int]History)} }

// Add records one family-drug prescription under the given extract year.
func (s *Scan) Add(year int, rx claims.Prescription) {
	h := s.ByYear[year]
	if h == nil {
		h = make(History)
		s.ByYear[year] = h
	}
	h[rx.PatientID] = append(h[rx.PatientID], Exposure{ItemCode: rx.ItemCode, Supplied: rx.Supplied})
}

// Years returns the scanned years in ascending order.
func (s *Scan) Years() []int {
	out := make([]int, 0, len(s.ByYear))
	for y := range s.ByYear {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// ExposedEver returns every patient seen in any scanned year.
func (s *Scan) ExposedEver() map[string]struct{} {
	out := make(map[string]struct{})
	for _, h := range s.ByYear {
		for id := range h {
			out[id] = struct{}{}
		}
	}
	return out
}

// FirstExposed returns the history of patients exposed in targetYear and in
// no earlier scanned year.
func (s *Scan) FirstExposed(targetYear int) History {
	target := s.ByYear[targetYear]
	out := make(History, len(target))
	for id, exp := range target {
		out[id] = exp
	}
	for y, h := range s.ByYear {
		if y >= targetYear {
			continue
		}
		for id := range h {
			delete(out, id)
		}
	}
	return out
}

// CopaymentKeep reports whether a prescription clears the copayment
// threshold (total cost >= threshold). A zero threshold keeps everything.
func CopaymentKeep(rx claims.Prescription, threshold float64) bool {
	if threshold <= 0 {
		return true
	}
	return rx.PatientAmt+rx.BenefitAmt >= threshold
}
