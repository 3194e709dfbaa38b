// core/claims/reader.go
package claims

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// header maps column names to positions; lookups are case-sensitive to match
// the extracts, which are upper-case throughout.
type header map[string]int

func (h header) col(rec []string, name string) (string, bool) {
	j, ok := h[name]
	if !ok || j >= len(rec) {
		return "", false
	}
	return rec[j], true
}

func readHeader(cr *csv.Reader, path string) (header, error) {
	rec, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, err
	}
	h := make(header, len(rec))
	for j, name := range rec {
		h[strings.TrimSpace(name)] = j
	}
	return h, nil
}

func require(h header, path string, names ...string) error {
	for _, n := range names {
		if _, ok := h[n]; !ok {
			return fmt.Errorf("%s: missing column %q", path, n)
		}
	}
	return nil
}

// forEachRow streams the CSV at path through visit, checking ctx between rows.
func forEachRow(ctx context.Context, path string, visit func(header, []string) error) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = fh.Close() }()

	cr := csv.NewReader(fh)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // claim extracts carry trailing columns we ignore
	cr.ReuseRecord = true

	h, err := readHeader(cr, path)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := visit(h, rec); err != nil {
			return err
		}
	}
}

// ForEachPrescription streams prescription rows from a claim file.
// PTNT_CNTRBTN_AMT and BNFT_AMT are optional; missing amounts read as zero.
func ForEachPrescription(ctx context.Context, path string, visit func(Prescription) error) error {
	first := true
	return forEachRow(ctx, path, func(h header, rec []string) error {
		if first {
			if err := require(h, path, "PTNT_ID", "ITM_CD", "SPPLY_DT"); err != nil {
				return err
			}
			first = false
		}
		id, _ := h.col(rec, "PTNT_ID")
		itm, _ := h.col(rec, "ITM_CD")
		dt, _ := h.col(rec, "SPPLY_DT")
		when, err := ParseDate(dt)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		p := Prescription{PatientID: id, ItemCode: strings.TrimSpace(itm), Supplied: when}
		if s, ok := h.col(rec, "PTNT_CNTRBTN_AMT"); ok {
			p.PatientAmt, _ = strconv.ParseFloat(strings.TrimSpace(s), 64)
		}
		if s, ok := h.col(rec, "BNFT_AMT"); ok {
			p.BenefitAmt, _ = strconv.ParseFloat(strings.TrimSpace(s), 64)
		}
		return visit(p)
	})
}

// ForEachService streams service rows from a claim file.
func ForEachService(ctx context.Context, path string, visit func(Service) error) error {
	first := true
	return forEachRow(ctx, path, func(h header, rec []string) error {
		if first {
			if err := require(h, path, "PIN", "ITEM", "DOS"); err != nil {
				return err
			}
			first = false
		}
		id, _ := h.col(rec, "PIN")
		itm, _ := h.col(rec, "ITEM")
		dt, _ := h.col(rec, "DOS")
		when, err := ParseDate(dt)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		state, _ := h.col(rec, "PINSTATE")
		return visit(Service{PatientID: id, ItemCode: strings.TrimSpace(itm), Date: when, PINState: strings.TrimSpace(state)})
	})
}

// LoadPersons reads the PIN,SEX,YOB lookup into a map keyed by patient id.
func LoadPersons(path string) (map[string]Person, error) {
	out := make(map[string]Person)
	err := forEachRow(context.Background(), path, func(h header, rec []string) error {
		if err := require(h, path, "PIN", "SEX", "YOB"); err != nil {
			return err
		}
		id, _ := h.col(rec, "PIN")
		sex, _ := h.col(rec, "SEX")
		yobs, _ := h.col(rec, "YOB")
		yob, err := strconv.Atoi(strings.TrimSpace(yobs))
		if err != nil {
			return fmt.Errorf("%s: bad YOB %q", path, yobs)
		}
		out[id] = Person{PatientID: id, Sex: strings.TrimSpace(sex), YearOfBirth: yob}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
