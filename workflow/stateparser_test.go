// ABOUTME: Tests for resume state reconstruction from manifests and legacy workflow logs.
// ABOUTME: Exercises both completion marker spellings, flag recovery, and later-line precedence.
package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeWorkflowLog(t *testing.T, rd *RunDir, name string, lines ...string) {
	t.Helper()
	var content string
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(filepath.Join(rd.LogsDir(), name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseWorkflowLogsBothMarkerSpellings(t *testing.T) {
	rd := newTestRunDir(t)
	writeWorkflowLog(t, rd, "workflow_01.log",
		"2026-03-01T10:00:00Z Step 'video' completed successfully",
		"2026-03-01T10:01:00Z Step 'convert' completed (7 items)",
		"2026-03-01T10:02:00Z Step 'describe' failed: exit code 1",
	)

	rs, err := ParseWorkflowLogs(rd.LogsDir())
	if err != nil {
		t.Fatalf("ParseWorkflowLogs: %v", err)
	}
	if !rs.Completed[StepVideo] {
		t.Error("old marker spelling not recognized as completion")
	}
	if !rs.Completed[StepConvert] {
		t.Error("new marker spelling not recognized as completion")
	}
	if rs.Completed[StepDescribe] {
		t.Error("failed step must not count as completed")
	}
}

func TestParseWorkflowLogsRecoversFlags(t *testing.T) {
	rd := newTestRunDir(t)
	writeWorkflowLog(t, rd, "workflow_01.log",
		"2026-03-01T10:00:00Z Starting step 'describe': /usr/bin/mediascribe describe --output-dir /out --provider ollama --model llava --prompt-style detailed --config /etc/ms.yaml /photos/trip",
		"2026-03-01T10:05:00Z Step 'describe' completed (42 items)",
	)

	rs, err := ParseWorkflowLogs(rd.LogsDir())
	if err != nil {
		t.Fatalf("ParseWorkflowLogs: %v", err)
	}
	if rs.Provider != "ollama" {
		t.Errorf("Provider = %q, want ollama", rs.Provider)
	}
	if rs.Model != "llava" {
		t.Errorf("Model = %q, want llava", rs.Model)
	}
	if rs.PromptStyle != "detailed" {
		t.Errorf("PromptStyle = %q, want detailed", rs.PromptStyle)
	}
	if rs.ConfigPath != "/etc/ms.yaml" {
		t.Errorf("ConfigPath = %q, want /etc/ms.yaml", rs.ConfigPath)
	}
	if rs.InputDir != "/photos/trip" {
		t.Errorf("InputDir = %q, want /photos/trip", rs.InputDir)
	}
}

func TestParseWorkflowLogsFlagValueNotMistakenForInputDir(t *testing.T) {
	rd := newTestRunDir(t)
	// html takes no input dir; its trailing token is a flag value.
	writeWorkflowLog(t, rd, "workflow_01.log",
		"2026-03-01T10:00:00Z Starting step 'html': /usr/bin/mediascribe html --output-dir /out",
	)

	rs, err := ParseWorkflowLogs(rd.LogsDir())
	if err != nil {
		t.Fatalf("ParseWorkflowLogs: %v", err)
	}
	if rs.InputDir != "" {
		t.Errorf("InputDir = %q, want empty", rs.InputDir)
	}
}

func TestParseWorkflowLogsLaterStartSupersedesCompletion(t *testing.T) {
	rd := newTestRunDir(t)
	writeWorkflowLog(t, rd, "workflow_01.log",
		"2026-03-01T10:00:00Z Step 'convert' completed (3 items)",
	)
	writeWorkflowLog(t, rd, "workflow_02.log",
		"2026-03-01T11:00:00Z Starting step 'convert': /usr/bin/mediascribe convert --output-dir /out /photos",
	)

	rs, err := ParseWorkflowLogs(rd.LogsDir())
	if err != nil {
		t.Fatalf("ParseWorkflowLogs: %v", err)
	}
	if rs.Completed[StepConvert] {
		t.Error("re-started step must not remain completed")
	}
}

func TestParseWorkflowLogsNoLogs(t *testing.T) {
	rd := newTestRunDir(t)
	if _, err := ParseWorkflowLogs(rd.LogsDir()); err == nil {
		t.Fatal("expected error when no workflow logs exist")
	}
}

func TestLoadResumeStatePrefersManifest(t *testing.T) {
	rd := newTestRunDir(t)

	// A legacy log claiming convert completed, contradicted by the manifest.
	writeWorkflowLog(t, rd, "workflow_01.log",
		"2026-03-01T10:00:00Z Step 'convert' completed (3 items)",
	)

	m := &Manifest{
		RunID:     "01TEST",
		InputDir:  "/photos/trip",
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		StartedAt: time.Now(),
		Steps: []StepRecord{
			{Name: StepVideo, Status: StatusCompleted, Items: 2},
			{Name: StepConvert, Status: StatusFailed, Error: "exit code 1"},
		},
	}
	if err := m.Save(rd.ManifestPath()); err != nil {
		t.Fatalf("Save manifest: %v", err)
	}

	rs, err := LoadResumeState(rd)
	if err != nil {
		t.Fatalf("LoadResumeState: %v", err)
	}
	if !rs.Completed[StepVideo] {
		t.Error("manifest completion not reflected")
	}
	if rs.Completed[StepConvert] {
		t.Error("manifest says convert failed; legacy log must not override it")
	}
	if rs.Provider != "openai" || rs.InputDir != "/photos/trip" {
		t.Errorf("manifest config not adopted: provider=%q input=%q", rs.Provider, rs.InputDir)
	}
}

func TestLoadResumeStateFallsBackToLogs(t *testing.T) {
	rd := newTestRunDir(t)
	writeWorkflowLog(t, rd, "workflow_01.log",
		"2026-03-01T10:00:00Z Step 'video' completed successfully",
	)

	rs, err := LoadResumeState(rd)
	if err != nil {
		t.Fatalf("LoadResumeState: %v", err)
	}
	if !rs.Completed[StepVideo] {
		t.Error("legacy fallback did not recognize completion")
	}
}
