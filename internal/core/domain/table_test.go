package domain

import "testing"

func TestFingerprintDependsOnShapeAndColumns(t *testing.T) {
	a := &Table{Columns: []string{"x", "y"}, Rows: [][]string{{"1", "2"}}}
	b := &Table{Columns: []string{"x", "y"}, Rows: [][]string{{"9", "8"}}}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("tables of identical shape and columns must share a fingerprint")
	}

	c := &Table{Columns: []string{"x", "z"}, Rows: [][]string{{"1", "2"}}}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("different column names must produce different fingerprints")
	}

	d := &Table{Columns: []string{"x", "y"}, Rows: [][]string{{"1", "2"}, {"3", "4"}}}
	if a.Fingerprint() == d.Fingerprint() {
		t.Fatalf("different row counts must produce different fingerprints")
	}
}

func TestEmptyTable(t *testing.T) {
	var absent *Table
	if !absent.Empty() {
		t.Fatalf("nil table should be empty")
	}
	if !(&Table{Columns: []string{"a"}}).Empty() {
		t.Fatalf("table without rows should be empty")
	}
	if (&Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}).Empty() {
		t.Fatalf("table with rows should not be empty")
	}
}

func TestParseFileCategory(t *testing.T) {
	category, err := ParseFileCategory(" Excel ")
	if err != nil {
		t.Fatalf("ParseFileCategory() error = %v", err)
	}
	if category != CategoryExcel {
		t.Fatalf("expected excel, got %s", category)
	}
	if !category.Accepts("report.XLSX") {
		t.Fatalf("excel must accept .xlsx")
	}
	if category.Accepts("report.csv") {
		t.Fatalf("excel must reject .csv")
	}

	if _, err := ParseFileCategory("tar"); !IsKind(err, ErrUnsupportedCategory) {
		t.Fatalf("expected ErrUnsupportedCategory, got %v", err)
	}
}
