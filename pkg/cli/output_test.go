package cli

import (
	"bytes"
	"strings"
	"testing"
)

type testTable struct{}

func (testTable) Headers() []string { return []string{"SESSION", "OUTCOME"} }
func (testTable) Rows() [][]string {
	return [][]string{{"abc", "allow"}, {"abc", "block"}}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"junit", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText).FormatTo(&buf, testTable{}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "SESSION") || !strings.Contains(lines[2], "block") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	NewFormatter(FormatText).FormatTo(&buf, "plain")
	if buf.String() != "plain\n" {
		t.Errorf("plain value output = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatTo(&buf, map[string]int{"count": 2}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"count": 2`) {
		t.Errorf("JSON output = %q", buf.String())
	}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatCSV).FormatTo(&buf, testTable{}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	want := "SESSION,OUTCOME\nabc,allow\nabc,block\n"
	if buf.String() != want {
		t.Errorf("CSV output = %q, want %q", buf.String(), want)
	}

	if err := NewFormatter(FormatCSV).FormatTo(&buf, 42); err == nil {
		t.Error("CSV of a non-table error = nil")
	}
}
