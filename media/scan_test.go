// ABOUTME: Tests for media file scanning: extension matching, ordering, hidden file skipping.
package media

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImagesRecursiveSorted(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "zebra.jpg"))
	touch(t, filepath.Join(dir, "apple.PNG"))
	touch(t, filepath.Join(dir, "sub", "banana.jpeg"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "clip.mp4"))

	images, err := Images(dir)
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("got %d images: %v", len(images), images)
	}
	if !sort.StringsAreSorted(images) {
		t.Errorf("images not sorted: %v", images)
	}
	for _, p := range images {
		if !filepath.IsAbs(p) {
			t.Errorf("path not absolute: %s", p)
		}
	}
}

func TestScanSkipsHidden(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, ".hidden.jpg"))
	touch(t, filepath.Join(dir, ".cache", "thumb.jpg"))
	touch(t, filepath.Join(dir, "visible.jpg"))

	images, err := Images(dir)
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if len(images) != 1 || filepath.Base(images[0]) != "visible.jpg" {
		t.Errorf("images = %v", images)
	}
}

func TestVideosAndHEIC(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "trip.MOV"))
	touch(t, filepath.Join(dir, "clip.mp4"))
	touch(t, filepath.Join(dir, "photo.HEIC"))
	touch(t, filepath.Join(dir, "photo.jpg"))

	videos, err := Videos(dir)
	if err != nil {
		t.Fatalf("Videos: %v", err)
	}
	if len(videos) != 2 {
		t.Errorf("videos = %v", videos)
	}

	heic, err := HEICFiles(dir)
	if err != nil {
		t.Fatalf("HEICFiles: %v", err)
	}
	if len(heic) != 1 || filepath.Base(heic[0]) != "photo.HEIC" {
		t.Errorf("heic = %v", heic)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Images(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestJPEGNameFor(t *testing.T) {
	if got := JPEGNameFor("/photos/IMG_1234.HEIC"); got != "IMG_1234.jpg" {
		t.Errorf("JPEGNameFor = %q", got)
	}
}
