package output

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fairlens/fairlens/pkg/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"TOON", FormatTOON},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "report.json")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	if f.Colored() {
		t.Error("colored should be disabled when writing to a file")
	}

	if err := f.Output(map[string]string{"status": "PASS"}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading output file: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["status"] != "PASS" {
		t.Errorf("status = %q, want PASS", decoded["status"])
	}
}

func TestMetricsTable(t *testing.T) {
	metrics := []models.Metric{
		models.GateMetric("Complexity_Ratio", 3, 1.5, true),
		models.InfoMetric("Persona_A_Complexity", 6),
		{Name: "Edge_Ratio", Value: models.Ratio(math.Inf(1)), Threshold: 1.5, Result: models.ResultFail},
	}

	table := MetricsTable("Differential Audit", metrics, nil)

	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}
	if got := table.Rows[0]; got[0] != "Complexity_Ratio" || got[1] != "3" || got[2] != "1.5" || got[3] != "FAIL" {
		t.Errorf("unexpected first row: %v", got)
	}
	if got := table.Rows[2][1]; got != "Infinity" {
		t.Errorf("infinite ratio rendered as %q, want Infinity", got)
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := &Table{
		Title:   "Metrics",
		Headers: []string{"Metric", "Result"},
		Rows:    [][]string{{"Complexity_Ratio", "FAIL"}},
	}

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"## Metrics", "| Metric | Result |", "| --- | --- |", "| Complexity_Ratio | FAIL |"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestTableRenderData(t *testing.T) {
	table := &Table{
		Headers: []string{"Metric", "Result"},
		Rows:    [][]string{{"Complexity_Ratio", "FAIL"}},
	}

	data, ok := table.RenderData().([]map[string]string)
	if !ok {
		t.Fatalf("RenderData() returned %T, want []map[string]string", table.RenderData())
	}
	if data[0]["Metric"] != "Complexity_Ratio" || data[0]["Result"] != "FAIL" {
		t.Errorf("unexpected row data: %v", data[0])
	}
}

func TestSectionRenderText(t *testing.T) {
	section := &Section{
		Title:   "Audit Summary",
		Content: "No bias detected.",
		Sections: []Section{
			{Title: "Gender", Content: "PASS"},
		},
	}

	var buf bytes.Buffer
	if err := section.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Audit Summary\n=============") {
		t.Errorf("missing top-level underline:\n%s", out)
	}
	if !strings.Contains(out, "Gender\n------") {
		t.Errorf("missing nested underline:\n%s", out)
	}
}

func TestFormatterTOONOutput(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{format: FormatTOON, writer: &buf}

	err := f.Output(struct {
		Status string `json:"status" toon:"status"`
	}{Status: "PASS"})
	if err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if !strings.Contains(buf.String(), "PASS") {
		t.Errorf("TOON output missing status:\n%s", buf.String())
	}
}
