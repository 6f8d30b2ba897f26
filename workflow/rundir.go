// ABOUTME: RunDir manages the output directory layout for a workflow run.
// ABOUTME: Provides structured paths for logs, descriptions, frames, converted images, and the HTML report.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"
)

// RunDir represents the output directory structure for a single workflow run.
// Every artifact a run produces lives underneath Base; the directory itself is
// the durable identity of the run.
type RunDir struct {
	Base string
}

// OpenRunDir creates (or reopens, on resume) the run directory structure at base.
// All subdirectories are created up front so steps can assume they exist.
func OpenRunDir(base string) (*RunDir, error) {
	if base == "" {
		return nil, fmt.Errorf("output directory must not be empty")
	}

	rd := &RunDir{Base: base}
	for _, dir := range []string{rd.LogsDir(), rd.DescriptionsDir(), rd.FramesDir(), rd.ConvertedDir(), rd.HTMLDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating run directory structure: %w", err)
		}
	}
	return rd, nil
}

// LogsDir returns the directory holding all workflow and step logs.
func (rd *RunDir) LogsDir() string { return filepath.Join(rd.Base, "logs") }

// DescriptionsDir returns the directory holding description output.
func (rd *RunDir) DescriptionsDir() string { return filepath.Join(rd.Base, "descriptions") }

// FramesDir returns the directory video frames are extracted into.
func (rd *RunDir) FramesDir() string { return filepath.Join(rd.Base, "frames") }

// ConvertedDir returns the directory converted images are written into.
func (rd *RunDir) ConvertedDir() string { return filepath.Join(rd.Base, "converted") }

// HTMLDir returns the directory the HTML report and CSV export are written into.
func (rd *RunDir) HTMLDir() string { return filepath.Join(rd.Base, "html") }

// LedgerPath returns the path of the progress ledger file.
func (rd *RunDir) LedgerPath() string {
	return filepath.Join(rd.LogsDir(), "image_describer_progress.txt")
}

// StatusPath returns the path of the human-readable status snapshot.
func (rd *RunDir) StatusPath() string { return filepath.Join(rd.LogsDir(), "status.log") }

// ManifestPath returns the path of the structured run manifest.
func (rd *RunDir) ManifestPath() string { return filepath.Join(rd.LogsDir(), "run_manifest.json") }

// EventsPath returns the path of the append-only NDJSON event log.
func (rd *RunDir) EventsPath() string { return filepath.Join(rd.LogsDir(), "events.ndjson") }

// LivePath returns the path of the live.json machine-readable snapshot.
func (rd *RunDir) LivePath() string { return filepath.Join(rd.LogsDir(), "live.json") }

// DescriptionsPath returns the path of the human-facing description output file.
func (rd *RunDir) DescriptionsPath() string {
	return filepath.Join(rd.DescriptionsDir(), "image_descriptions.txt")
}

// IndexPath returns the path of the sqlite description index.
func (rd *RunDir) IndexPath() string { return filepath.Join(rd.DescriptionsDir(), "index.db") }

// ReportPath returns the path of the generated HTML report.
func (rd *RunDir) ReportPath() string { return filepath.Join(rd.HTMLDir(), "report.html") }

// CSVPath returns the path of the generated CSV export.
func (rd *RunDir) CSVPath() string { return filepath.Join(rd.HTMLDir(), "descriptions.csv") }

// WorkflowLogPath returns the orchestrator log path for the given run ID.
func (rd *RunDir) WorkflowLogPath(runID string) string {
	return filepath.Join(rd.LogsDir(), fmt.Sprintf("workflow_%s.log", runID))
}

// StepLogPath returns the subprocess log path for a step in the given run.
func (rd *RunDir) StepLogPath(step Step, runID string) string {
	return filepath.Join(rd.LogsDir(), fmt.Sprintf("%s_%s.log", step, runID))
}
