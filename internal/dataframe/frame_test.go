package dataframe

import (
	"strings"
	"testing"
)

const salesCSV = `date,region,revenue,units
2025-01-10,north,100,5
2025-01-25,south,200,8
2025-02-10,north,300,12
2025-02-20,west,400,15
`

func salesFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := ReadCSV(strings.NewReader(salesCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return f
}

func TestReadCSV(t *testing.T) {
	f := salesFrame(t)

	wantCols := []string{"date", "region", "revenue", "units"}
	got := f.Columns()
	if len(got) != len(wantCols) {
		t.Fatalf("columns = %v", got)
	}
	for i, col := range wantCols {
		if got[i] != col {
			t.Errorf("column[%d] = %q, want %q", i, got[i], col)
		}
	}
	if f.Rows() != 4 {
		t.Errorf("rows = %d, want 4", f.Rows())
	}
	if cell, _ := f.Cell("region", 1); cell != "south" {
		t.Errorf("cell(region,1) = %q", cell)
	}
}

func TestReadCSV_ShortRecordPadded(t *testing.T) {
	csv := "a,b\n1,2\n3\n"
	f, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if f.Rows() != 2 {
		t.Errorf("rows = %d", f.Rows())
	}
	if cell, _ := f.Cell("b", 1); cell != "" {
		t.Errorf("short record must pad with empty cell, got %q", cell)
	}
}

func TestNew_MismatchedLengths(t *testing.T) {
	_, err := New([]string{"a", "b"}, map[string][]string{
		"a": {"1", "2"},
		"b": {"1"},
	})
	if err == nil {
		t.Fatal("expected error for mismatched column lengths")
	}
}

func TestNumeric(t *testing.T) {
	f := salesFrame(t)

	values, positions, ok := f.Numeric("revenue")
	if !ok {
		t.Fatal("revenue should be numeric")
	}
	if len(values) != 4 || values[0] != 100 || values[3] != 400 {
		t.Errorf("values = %v", values)
	}
	if positions[2] != 2 {
		t.Errorf("positions = %v", positions)
	}

	if _, _, ok := f.Numeric("region"); ok {
		t.Error("region must not parse as numeric")
	}
	if _, _, ok := f.Numeric("nope"); ok {
		t.Error("unknown column must not parse as numeric")
	}
}

func TestNumeric_SkipsEmptyCells(t *testing.T) {
	f, err := New([]string{"v"}, map[string][]string{"v": {"1", "", "3"}})
	if err != nil {
		t.Fatal(err)
	}
	values, positions, ok := f.Numeric("v")
	if !ok {
		t.Fatal("column with empty cells should still be numeric")
	}
	if len(values) != 2 || positions[1] != 2 {
		t.Errorf("values = %v positions = %v", values, positions)
	}
}

func TestNumericColumns(t *testing.T) {
	f := salesFrame(t)
	cols := f.NumericColumns()
	if len(cols) != 2 || cols[0] != "revenue" || cols[1] != "units" {
		t.Errorf("numeric columns = %v", cols)
	}
}

func TestParseTime(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-01-10", true},
		{"2025/01/10", true},
		{"01/10/2025", true},
		{"Jan 2, 2026", true},
		{"2025-01", true},
		{"north", false},
		{"", false},
	}
	for _, tc := range cases {
		if _, ok := ParseTime(tc.in); ok != tc.ok {
			t.Errorf("ParseTime(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
}

func TestSelectAndHead(t *testing.T) {
	f := salesFrame(t)

	sel, err := f.Select("region", "revenue")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if cols := sel.Columns(); len(cols) != 2 || cols[0] != "region" {
		t.Errorf("columns = %v", cols)
	}

	if _, err := f.Select("missing"); err == nil {
		t.Error("expected error for unknown column")
	}

	h := f.Head(2)
	if h.Rows() != 2 {
		t.Errorf("head rows = %d", h.Rows())
	}
	if f.Head(100).Rows() != 4 {
		t.Error("head must clamp to row count")
	}
}

func TestCopyIsDeep(t *testing.T) {
	f := salesFrame(t)
	c := f.Copy()
	if err := c.Set("region", []string{"x", "x", "x", "x"}); err != nil {
		t.Fatal(err)
	}
	if cell, _ := f.Cell("region", 0); cell != "north" {
		t.Errorf("original mutated: %q", cell)
	}
}

func TestRecords(t *testing.T) {
	f := salesFrame(t)
	recs := f.Records()
	if len(recs) != 4 {
		t.Fatalf("records = %d", len(recs))
	}
	if recs[0][1] != "north" || recs[3][2] != "400" {
		t.Errorf("records = %v", recs)
	}
}

func TestFilterRows(t *testing.T) {
	f := salesFrame(t)
	out := f.FilterRows([]int{2, 0})
	if out.Rows() != 2 {
		t.Fatalf("rows = %d", out.Rows())
	}
	if cell, _ := out.Cell("revenue", 0); cell != "300" {
		t.Errorf("first kept row = %q", cell)
	}
	// Out-of-range indices are dropped, not padded.
	if f.FilterRows([]int{99}).Rows() != 0 {
		t.Error("out-of-range index must yield no rows")
	}
}

func TestSet(t *testing.T) {
	f := salesFrame(t)
	if err := f.Set("flag", []string{"a", "b", "c", "d"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !f.HasColumn("flag") {
		t.Error("new column missing")
	}
	if err := f.Set("flag", []string{"too", "short"}); err == nil {
		t.Error("expected length mismatch error")
	}
}
