// ABOUTME: Tests for CLI dispatch and usage errors.
package main

import "testing"

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"frobnicate"}); code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
}

func TestRunNoArgs(t *testing.T) {
	if code := run(nil); code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
}

func TestRunVersion(t *testing.T) {
	if code := run([]string{"version"}); code != 0 {
		t.Errorf("exit = %d, want 0", code)
	}
}

func TestRunHelp(t *testing.T) {
	if code := run([]string{"help"}); code != 0 {
		t.Errorf("exit = %d, want 0", code)
	}
}

func TestRunMissingOutputDir(t *testing.T) {
	if code := run([]string{"run", "/photos"}); code != 2 {
		t.Errorf("run without --output-dir: exit = %d, want 2", code)
	}
}

func TestRunMissingInputDir(t *testing.T) {
	if code := run([]string{"run", "--output-dir", t.TempDir()}); code != 2 {
		t.Errorf("run without input dir: exit = %d, want 2", code)
	}
}

func TestRunInvalidSteps(t *testing.T) {
	if code := run([]string{"run", "--output-dir", t.TempDir(), "--steps", "bogus", "/photos"}); code != 2 {
		t.Errorf("invalid --steps: exit = %d, want 2", code)
	}
}

func TestHTMLMissingOutputDir(t *testing.T) {
	if code := run([]string{"html"}); code != 2 {
		t.Errorf("html without --output-dir: exit = %d, want 2", code)
	}
}

func TestHTMLEmptyRunDir(t *testing.T) {
	// No descriptions yet: still renders an empty report successfully.
	if code := run([]string{"html", "--output-dir", t.TempDir()}); code != 0 {
		t.Errorf("html on empty dir: exit = %d, want 0", code)
	}
}

func TestExtractNoVideos(t *testing.T) {
	if code := run([]string{"extract", "--output-dir", t.TempDir(), t.TempDir()}); code != 0 {
		t.Errorf("extract with no videos: exit = %d, want 0", code)
	}
}

func TestConvertNoHEIC(t *testing.T) {
	if code := run([]string{"convert", "--output-dir", t.TempDir(), t.TempDir()}); code != 0 {
		t.Errorf("convert with no HEIC files: exit = %d, want 0", code)
	}
}
