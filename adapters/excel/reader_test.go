package excel

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes cells into a fresh workbook and returns its
// serialized bytes.
func buildWorkbook(t *testing.T, sheet string, cells map[string]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
	}
	for ref, value := range cells {
		if err := f.SetCellValue(sheet, ref, value); err != nil {
			t.Fatalf("SetCellValue(%s): %v", ref, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func TestReadTableAnchoredAtOrigin(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", map[string]string{
		"A1": "name", "B1": "grade",
		"A2": "Ada", "B2": "A",
		"A3": "Grace", "B3": "B",
	})

	table, err := NewReader("roster.xlsx", data).ReadTable()
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	if len(table.Headings) != 2 || table.Headings[0] != "name" || table.Headings[1] != "grade" {
		t.Fatalf("Headings = %v", table.Headings)
	}
	if got := table.Columns["name"]; len(got) != 2 || got[0] != "Ada" || got[1] != "Grace" {
		t.Errorf("name column = %v", got)
	}
	if table.Rows() != 2 {
		t.Errorf("Rows = %d, want 2", table.Rows())
	}
}

// The table does not have to start at A1: the first non-empty cell
// anchors it.
func TestReadTableOffsetAnchor(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", map[string]string{
		"C3": "name", "D3": "house",
		"C4": "Ada", "D4": "Lovelace",
		"C5": "Alan", "D5": "Turing",
		"C6": "Grace", "D6": "Hopper",
	})

	table, err := NewReader("roster.xlsx", data).ReadTable()
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	if len(table.Headings) != 2 {
		t.Fatalf("Headings = %v", table.Headings)
	}
	if table.Rows() != 3 {
		t.Errorf("Rows = %d, want 3", table.Rows())
	}
	if got := table.Columns["house"][2]; got != "Hopper" {
		t.Errorf("house[2] = %q, want Hopper", got)
	}
}

// An empty cell in the anchor column terminates the table even when
// data continues below the gap.
func TestReadTableStopsAtGap(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", map[string]string{
		"A1": "name",
		"A2": "Ada",
		"A4": "Orphan",
	})

	table, err := NewReader("roster.xlsx", data).ReadTable()
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if table.Rows() != 1 {
		t.Errorf("Rows = %d, want 1 (gap should end the table)", table.Rows())
	}
}

func TestReadTableEmptyWorkbook(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", map[string]string{})

	_, err := NewReader("empty.xlsx", data).ReadTable()
	if err == nil {
		t.Fatal("ReadTable accepted an empty workbook")
	}
}

func TestReadTableCSV(t *testing.T) {
	csv := []byte("name,grade\nAda,A\nGrace,B\n")

	table, err := NewReader("roster.csv", csv).ReadTable()
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(table.Headings) != 2 || table.Rows() != 2 {
		t.Fatalf("Headings = %v, Rows = %d", table.Headings, table.Rows())
	}
	if got := table.Columns["grade"][1]; got != "B" {
		t.Errorf("grade[1] = %q, want B", got)
	}
}

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"student name", "Student_name"},
		{"NAME", "Name"},
		{"grade", "Grade"},
		{"  padded  ", "Padded"},
		{"école", "École"},
		{"ÉCOLE primaire", "École_primaire"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHeading(tt.in); got != tt.want {
			t.Errorf("NormalizeHeading(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
