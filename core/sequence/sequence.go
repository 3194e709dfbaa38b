// core/sequence/sequence.go

// Package sequence turns a patient's service claims into the ordered
// item/timespan sequence and the covariates used by the matching table.
package sequence

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MinLength is the threshold below which a visit sequence is discarded.
const MinLength = 10

var ErrNegativeSpan = errors.New("sequence: negative timespan")

// TimespanCode buckets a gap between consecutive services:
//
//	0 same day – 2 weeks
//	1 2 weeks – 1 month
//	2 1 month – 3 months
//	3 3 months – 1 year
//	4 beyond 1 year
//
// using 30-day business months and the 360-day business year.
func TimespanCode(days int) (int, error) {
	switch {
	case days < 0:
		return 0, ErrNegativeSpan
	case days <= 14:
		return 0, nil
	case days <= 30:
		return 1, nil
	case days <= 90:
		return 2, nil
	case days <= 360:
		return 3, nil
	default:
		return 4, nil
	}
}

// Visit is one service claim for a patient.
type Visit struct {
	Item     string
	Date     time.Time
	PINState string
}

// Patient carries the lookup data and observation window for one subject.
type Patient struct {
	ID          string
	Sex         string
	YearOfBirth int
	Start, End  time.Time
}

// Row is the extracted raw-data record for one patient: the item sequence
// interleaved with day gaps, its bucket-encoded twin, and the covariates.
type Row struct {
	ID           string
	Seq          string // "item days item days ... item"
	EncodedSeq   string // gaps replaced by TimespanCode buckets
	Length       int    // number of services in the window
	AvgAge       float64
	LastPINState string
	Sex          string
}

// Build extracts the sequence row for one patient. It reports ok=false when
// the windowed sequence is too short to keep.
func Build(p Patient, visits []Visit) (Row, bool) {
	vs := make([]Visit, 0, len(visits))
	for _, v := range visits {
		if v.Date.Before(p.Start) || v.Date.After(p.End) {
			continue
		}
		vs = append(vs, v)
	}
	if len(vs) <= MinLength {
		return Row{}, false
	}
	sort.Slice(vs, func(i, j int) bool {
		if !vs[i].Date.Equal(vs[j].Date) {
			return vs[i].Date.Before(vs[j].Date)
		}
		return vs[i].Item < vs[j].Item
	})

	var raw, enc strings.Builder
	yearSum := 0
	for i, v := range vs {
		if i > 0 {
			days := int(v.Date.Sub(vs[i-1].Date).Hours() / 24)
			code, _ := TimespanCode(days) // sorted order: never negative
			raw.WriteByte(' ')
			raw.WriteString(strconv.Itoa(days))
			raw.WriteByte(' ')
			enc.WriteByte(' ')
			enc.WriteString(strconv.Itoa(code))
			enc.WriteByte(' ')
		}
		raw.WriteString(v.Item)
		enc.WriteString(v.Item)
		yearSum += v.Date.Year()
	}

	avgAge := float64(yearSum)/float64(len(vs)) - float64(p.YearOfBirth)
	return Row{
		ID:           p.ID,
		Seq:          raw.String(),
		EncodedSeq:   enc.String(),
		Length:       len(vs),
		AvgAge:       avgAge,
		LastPINState: vs[len(vs)-1].PINState,
		Sex:          p.Sex,
	}, true
}
