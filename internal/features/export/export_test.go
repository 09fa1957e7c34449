package export

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"cxtrack/internal/features/report"
)

func TestColumns(t *testing.T) {
	cfg := report.ReportConfig{
		Dimensions: []report.Dimension{{Label: "Status"}},
		Metrics: []report.Metric{
			{Label: "Total Amount Sum"},
			{Label: "Total Amount Count"},
		},
	}

	got := Columns(cfg, nil)
	want := []string{"Status", "Total Amount Sum", "Total Amount Count"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}

	// No labels configured: deterministic fallback to sorted row keys.
	rows := []map[string]any{{"b": 1, "a": 2, "c": 3}}
	got = Columns(report.ReportConfig{}, rows)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("fallback columns = %v", got)
	}
}

func TestToCSVEscaping(t *testing.T) {
	svc := &ExportServiceImpl{}

	rows := []map[string]any{
		{"a": `He said "hi"`, "b": 2},
		{"a": "plain", "b": 3.5},
		{"a": "comma, inside", "b": nil},
	}

	out, err := svc.ToCSV([]string{"a", "b"}, rows)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	want := []string{
		"a,b",
		`"He said ""hi""",2`,
		"plain,3.5",
		`"comma, inside",`,
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("csv lines:\n%v\nwant:\n%v", lines, want)
	}
}

func TestToCSVMissingKeyRendersEmpty(t *testing.T) {
	svc := &ExportServiceImpl{}
	out, err := svc.ToCSV([]string{"a", "b"}, []map[string]any{{"a": "x"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimRight(string(out), "\n"); got != "a,b\nx," {
		t.Errorf("csv = %q", got)
	}
}

func TestExportValue(t *testing.T) {
	ts := time.Date(2026, 2, 3, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{ts, "2026-02-03 09:30:00"},
		{42, "42"},
		{3.14, "3.14"},
		{"text", "text"},
	}
	for _, tt := range tests {
		if got := exportValue(tt.in); got != tt.want {
			t.Errorf("exportValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToPDFProducesDocument(t *testing.T) {
	svc := &ExportServiceImpl{}
	rows := []map[string]any{
		{"Status": "paid", "Total": 1200.0},
		{"Status": "overdue", "Total": 300.0},
	}

	out, err := svc.ToPDF("Revenue by Status", []string{"Status", "Total"}, rows, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", out[:8])
	}
}

func TestToExcelProducesWorkbook(t *testing.T) {
	svc := &ExportServiceImpl{}
	rows := []map[string]any{{"Status": "paid", "Total": 1200.0}}

	out, err := svc.ToExcel([]string{"Status", "Total"}, rows)
	if err != nil {
		t.Fatal(err)
	}
	// xlsx is a zip archive.
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Errorf("output is not a zip archive: %q", out[:4])
	}
}
