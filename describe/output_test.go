// ABOUTME: Tests for description entry append and parse.
package describe

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image_descriptions.txt")

	e1 := NewEntry("/photos/a.jpg", "ollama", "llava", "detailed", "A red barn at sunset.")
	e2 := NewEntry("/photos/b.jpg", "ollama", "llava", "detailed", "Two dogs playing.\n\nOne is a beagle.")
	for _, e := range []Entry{e1, e2} {
		if err := AppendEntry(path, e); err != nil {
			t.Fatalf("AppendEntry: %v", err)
		}
	}

	entries, err := ReadEntries(path)
	if err != nil {
		t.Fatalf("ReadEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Path != "/photos/a.jpg" || entries[0].Text != "A red barn at sunset." {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Text != "Two dogs playing.\n\nOne is a beagle." {
		t.Errorf("multi-paragraph text mangled: %q", entries[1].Text)
	}
	if entries[0].ID != e1.ID {
		t.Errorf("ID lost: %q != %q", entries[0].ID, e1.ID)
	}
	if entries[0].Provider != "ollama" || entries[0].Model != "llava" || entries[0].Style != "detailed" {
		t.Errorf("header fields lost: %+v", entries[0])
	}
	if entries[0].Time.IsZero() {
		t.Error("timestamp lost")
	}
}

func TestReadEntriesMissingFile(t *testing.T) {
	entries, err := ReadEntries(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil {
		t.Fatalf("ReadEntries: %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %v, want nil", entries)
	}
}

func TestReadEntriesDropsTruncatedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image_descriptions.txt")

	good := NewEntry("/photos/a.jpg", "ollama", "llava", "detailed", "Complete entry.")
	if err := AppendEntry(path, good); err != nil {
		t.Fatal(err)
	}
	// Simulate a crash mid-write: marker and partial header, no text.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("=== deadbeef\npath: /photos/b.jpg\n")
	f.Close()

	entries, err := ReadEntries(path)
	if err != nil {
		t.Fatalf("ReadEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/photos/a.jpg" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestNewEntryFields(t *testing.T) {
	before := time.Now().Add(-time.Second)
	e := NewEntry("/p.jpg", "openai", "gpt-4o-mini", "concise", "text")
	if e.ID == "" {
		t.Error("missing ID")
	}
	if e.Time.Before(before.UTC()) {
		t.Errorf("timestamp %v not current", e.Time)
	}
}
