// ABOUTME: Tests for the SQLite description index.
package describe

import (
	"path/filepath"
	"testing"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestIndexPutAndSearch(t *testing.T) {
	ix := openTestIndex(t)

	entries := []Entry{
		NewEntry("/photos/beach.jpg", "ollama", "llava", "detailed", "Waves on a sandy beach."),
		NewEntry("/photos/forest.jpg", "ollama", "llava", "detailed", "Tall pine trees in fog."),
	}
	for _, e := range entries {
		if err := ix.Put(e); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := ix.Search("beach")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Path != "/photos/beach.jpg" {
		t.Errorf("Search(beach) = %+v", got)
	}

	all, err := ix.Search("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("Search(\"\") = %d entries, want 2", len(all))
	}
	if all[0].Path > all[1].Path {
		t.Error("results not ordered by path")
	}
}

func TestIndexPutUpsert(t *testing.T) {
	ix := openTestIndex(t)
	e := NewEntry("/photos/a.jpg", "ollama", "llava", "detailed", "First take.")
	if err := ix.Put(e); err != nil {
		t.Fatal(err)
	}
	e.Text = "Second take."
	if err := ix.Put(e); err != nil {
		t.Fatal(err)
	}

	n, err := ix.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1 after upsert", n)
	}
	got, _ := ix.Search("take")
	if len(got) != 1 || got[0].Text != "Second take." {
		t.Errorf("upsert not applied: %+v", got)
	}
}

func TestIndexRebuild(t *testing.T) {
	ix := openTestIndex(t)
	if err := ix.Put(NewEntry("/old.jpg", "ollama", "llava", "detailed", "stale")); err != nil {
		t.Fatal(err)
	}

	fresh := []Entry{
		NewEntry("/a.jpg", "openai", "gpt-4o-mini", "concise", "one"),
		NewEntry("/b.jpg", "openai", "gpt-4o-mini", "concise", "two"),
	}
	if err := ix.Rebuild(fresh); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	n, err := ix.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2 after rebuild", n)
	}
	if got, _ := ix.Search("stale"); len(got) != 0 {
		t.Error("stale entry survived rebuild")
	}
}
