// core/cohortdef/cohortdef_test.go
package cohortdef

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cohort-core/claims"
)

func day(s string) time.Time {
	t, err := time.Parse(claims.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rx(id, item, date string) claims.Prescription {
	return claims.Prescription{PatientID: id, ItemCode: item, Supplied: day(date)}
}

func TestNormalizeItem(t *testing.T) {
	if got := NormalizeItem("8607B"); got != "08607B" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeItem("123456"); got != "123456" {
		t.Errorf("6-char code must be untouched, got %q", got)
	}
}

func TestLoadItemSet(t *testing.T) {
	p := filepath.Join(t.TempDir(), "items.csv")
	if err := os.WriteFile(p, []byte("ITM_CD\n8607B\n08607B\n2178K\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := LoadItemSet(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 2 || !set.Has("08607B") || !set.Has("02178K") {
		t.Fatalf("unexpected set %v", set)
	}
}

func TestFirstExposed(t *testing.T) {
	s := NewScan()
	s.Add(2010, rx("a", "X", "05May2010"))
	s.Add(2012, rx("a", "X", "05May2012")) // exposed before target: excluded
	s.Add(2012, rx("b", "X", "01Feb2012"))
	s.Add(2013, rx("c", "X", "01Feb2013")) // later year must not matter

	first := s.FirstExposed(2012)
	if len(first) != 1 {
		t.Fatalf("want only b, got %v", first)
	}
	if _, ok := first["b"]; !ok {
		t.Fatal("b missing")
	}
}

func TestOnlyAndSwitched(t *testing.T) {
	narrow := ItemSet{"MET1": {}, "MET2": {}}
	h := History{
		"only":    {{"MET1", day("01Jan2012")}, {"MET2", day("01Mar2012")}},
		"switch":  {{"MET1", day("01Jan2012")}, {"OTH", day("01Jun2012")}},
		"starter": {{"OTH", day("01Jan2012")}, {"MET1", day("01Jun2012")}},
		"never":   {{"OTH", day("01Jan2012")}},
	}

	only := NarrowOnly(h, narrow)
	if len(only) != 1 {
		t.Fatalf("only: %v", only)
	}
	if _, ok := only["only"]; !ok {
		t.Fatal("patient 'only' missing")
	}

	after := SwitchedAfter(h, narrow)
	if len(after) != 1 {
		t.Fatalf("after: %v", after)
	}
	if _, ok := after["switch"]; !ok {
		t.Fatal("patient 'switch' missing")
	}
}

func TestLabelsDeterministic(t *testing.T) {
	only := History{"b": {{"MET1", day("02Jan2012")}}}
	after := History{"a": {{"MET1", day("05Jan2012")}, {"OTH", day("09Sep2012")}}}
	labels := Labels(only, after)
	if len(labels) != 2 || labels[0].PatientID != "a" || labels[0].Class != 1 {
		t.Fatalf("unexpected labels %+v", labels)
	}
	if !labels[1].FirstSupply.Equal(day("02Jan2012")) {
		t.Errorf("first supply: %v", labels[1].FirstSupply)
	}
}

func TestNegatives(t *testing.T) {
	cands := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	exposed := map[string]struct{}{"b": {}}
	neg := Negatives(cands, exposed)
	if len(neg) != 2 || neg[0] != "a" || neg[1] != "c" {
		t.Fatalf("negatives %v", neg)
	}
}

func TestLoadLabels(t *testing.T) {
	p := filepath.Join(t.TempDir(), "labels.csv")
	if err := os.WriteFile(p, []byte("PIN,CLASS,SPPLY_DT\n100,1,17Mar2012\n101,0,02Jan2012\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	labels, err := LoadLabels(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 2 || labels[0].PatientID != "100" || labels[0].Class != 1 {
		t.Fatalf("unexpected labels %+v", labels)
	}
	if !labels[1].FirstSupply.Equal(day("02Jan2012")) {
		t.Errorf("first supply: %v", labels[1].FirstSupply)
	}
}

func TestLoadLabelsRejectsBadClass(t *testing.T) {
	p := filepath.Join(t.TempDir(), "labels.csv")
	if err := os.WriteFile(p, []byte("PIN,CLASS,SPPLY_DT\n100,2,17Mar2012\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLabels(p); err == nil {
		t.Fatal("want error for CLASS outside {0,1}")
	}
}

func TestCopaymentKeep(t *testing.T) {
	p := claims.Prescription{PatientAmt: 5, BenefitAmt: 20}
	if !CopaymentKeep(p, 0) {
		t.Error("zero threshold must keep")
	}
	if !CopaymentKeep(p, 25) || CopaymentKeep(p, 26) {
		t.Error("threshold boundary wrong")
	}
}
