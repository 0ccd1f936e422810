package frame

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestNewPadsShortRows(t *testing.T) {
	f, err := New("test", []string{"A", "B", "C"}, [][]string{
		{"1"},
		{"1", "2", "3", "4"},
	})
	if err != nil {
		t.Fatalf("new frame: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("len = %d, want 2", f.Len())
	}
	if got := f.Cell(0, 2); got != "" {
		t.Fatalf("padded cell = %q, want empty", got)
	}
	if got := f.Cell(1, 2); got != "3" {
		t.Fatalf("cell(1,2) = %q, want 3", got)
	}
	if got := f.Cell(5, 0); got != "" {
		t.Fatalf("out-of-range cell = %q, want empty", got)
	}
}

func TestNewRejectsEmptyHeader(t *testing.T) {
	if _, err := New("test", nil, nil); err == nil {
		t.Fatalf("expected error for empty header")
	}
}

func TestCellByNameFirstDuplicateWins(t *testing.T) {
	f, err := New("test", []string{"A", "A", "B"}, [][]string{{"first", "second", "b"}})
	if err != nil {
		t.Fatalf("new frame: %v", err)
	}
	got, ok := f.CellByName(0, "A")
	if !ok || got != "first" {
		t.Fatalf("CellByName(A) = (%q, %v), want (first, true)", got, ok)
	}
	if _, ok := f.CellByName(0, "Z"); ok {
		t.Fatalf("expected miss for unknown column")
	}
}

func TestReadCSV(t *testing.T) {
	content := "IdPaciente,Sexo,FA UNICA\nP-1,F,2024-08-01\nP-2,M,2024-08-02\n"
	f, err := ReadCSV("historico", strings.NewReader(content))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("len = %d, want 2", f.Len())
	}
	if got := f.Cell(1, 1); got != "M" {
		t.Fatalf("cell(1,1) = %q, want M", got)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, err := ReadCSV("vacio", strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty source")
	}
}

func TestReadCSVFile(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "historico-*.csv")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString("MUNICIPIO,TOTAL\nIbagué,100\n"); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}

	f, err := ReadCSVFile(tmp.Name())
	if err != nil {
		t.Fatalf("read csv file: %v", err)
	}
	if !strings.HasPrefix(f.Name, "historico-") {
		t.Fatalf("frame name = %q, want historico-* prefix", f.Name)
	}
	if got := f.Cell(0, 0); got != "Ibagué" {
		t.Fatalf("cell(0,0) = %q", got)
	}
}

func TestIsNull(t *testing.T) {
	for _, s := range []string{"", "  ", "nan", "NaN", "NULL", "None", "N/A", "#N/A", "Sin dato"} {
		if !IsNull(s) {
			t.Fatalf("IsNull(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"0", "Ibagué", "no"} {
		if IsNull(s) {
			t.Fatalf("IsNull(%q) = true, want false", s)
		}
	}
}

func TestParseInt(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{" 12 ", 12, true},
		{"12.0", 12, true},
		{"1,200", 1200, true},
		{"-3", -3, true},
		{"12.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseInt(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseInt(%q) = (%d, %v), want (%d, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-08-01", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), true},
		{"01/08/2024", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-08-01T10:30:00", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-08-01 10:30:00", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), true},
		{"1/8/2024", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), true},
		{"not a date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.raw)
		if ok != tc.ok || !got.Equal(tc.want) {
			t.Fatalf("ParseDate(%q) = (%v, %v), want (%v, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
