// ABOUTME: Tests for HTML report rendering: markdown conversion, escaping, empty input.
package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mediascribe/mediascribe/describe"
)

func testEntry(path, text string) describe.Entry {
	return describe.Entry{
		ID:       "test-id",
		Path:     path,
		Provider: "ollama",
		Model:    "llava",
		Style:    "detailed",
		Time:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Text:     text,
	}
}

func TestWriteReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.html")
	entries := []describe.Entry{
		testEntry("/photos/a.jpg", "A **bold** claim about a barn."),
		testEntry("/photos/b.jpg", "Plain sentence."),
	}

	if err := WriteReport(out, entries); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	html := string(raw)

	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Error("markdown not rendered")
	}
	if !strings.Contains(html, "a.jpg") || !strings.Contains(html, "b.jpg") {
		t.Error("entries missing from report")
	}
	if !strings.Contains(html, "2 images") {
		t.Error("count missing from header")
	}
	if !strings.Contains(html, `src="file:///photos/a.jpg"`) {
		t.Error("image source missing")
	}
	if strings.Contains(html, "ZgotmplZ") {
		t.Error("template sanitizer rejected the file:// image source")
	}
}

func TestWriteReportEmpty(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.html")
	if err := WriteReport(out, nil); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	raw, _ := os.ReadFile(out)
	if !strings.Contains(string(raw), "0 images") {
		t.Error("empty report should still render")
	}
}

func TestWriteCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "descriptions.csv")
	entries := []describe.Entry{
		testEntry("/photos/a.jpg", "Has, commas and \"quotes\"."),
	}
	if err := WriteCSV(out, entries); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	content := string(raw)
	if !strings.HasPrefix(content, "path,provider,model,style,time,description") {
		t.Errorf("header missing:\n%s", content)
	}
	if !strings.Contains(content, `"Has, commas and ""quotes""."`) {
		t.Errorf("quoting wrong:\n%s", content)
	}
}
