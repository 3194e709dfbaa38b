// core/claims/claims.go

// Package claims reads the raw administrative claim extracts the workflow
// consumes: prescription files (PTNT_ID,ITM_CD,SPPLY_DT,...), service files
// (PIN,ITEM,DOS,PINSTATE) and the patient lookup (PIN,SEX,YOB).
package claims

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the supply/service date format used by the extracts
// (e.g. "17Mar2012").
const DateLayout = "02Jan2006"

// Prescription is one row of a prescription claim file.
type Prescription struct {
	PatientID  string
	ItemCode   string
	Supplied   time.Time
	PatientAmt float64
	BenefitAmt float64
}

// Service is one row of a service claim file.
type Service struct {
	PatientID string
	ItemCode  string
	Date      time.Time
	PINState  string
}

// Person is one row of the patient lookup file.
type Person struct {
	PatientID   string
	Sex         string
	YearOfBirth int
}

// ParseDate parses a claim date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("claims: bad date %q: %v", s, err)
	}
	return t, nil
}

// ListFiles returns the files under root whose base name starts with prefix,
// sorted for deterministic processing order.
func ListFiles(root, prefix string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		out = append(out, filepath.Join(root, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// YearFromFilename extracts a trailing _YYYY year from a claim file name,
// e.g. PBS_SAMPLE_10PCT_2012.csv.
func YearFromFilename(path string) (int, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return 0, false
	}
	y, err := strconv.Atoi(base[i+1:])
	if err != nil || y < 1900 || y > 2100 {
		return 0, false
	}
	return y, true
}
