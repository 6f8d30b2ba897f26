// ABOUTME: Overwritten human-readable status snapshot summarizing workflow progress.
// ABOUTME: Always a fresh snapshot with a timestamp header and elapsed time, never appended.
package workflow

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// StatusLog writes the at-a-glance status file consumed by humans and the
// viewer. Each Write replaces the entire file: stale historic lines have no
// value to a reader who wants "now". This file is advisory, not authoritative.
type StatusLog struct {
	path    string
	started time.Time
	now     func() time.Time
}

// NewStatusLog creates a status log writer for the given run directory.
// started anchors the elapsed-time line in every snapshot.
func NewStatusLog(rd *RunDir, started time.Time) *StatusLog {
	return &StatusLog{path: rd.StatusPath(), started: started, now: time.Now}
}

// Write overwrites the status file with a timestamp header, the elapsed time
// since run start, and the given lines.
func (s *StatusLog) Write(lines []string) error {
	now := s.now()
	var buf strings.Builder
	fmt.Fprintf(&buf, "Updated: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&buf, "Elapsed: %s\n", now.Sub(s.started).Round(time.Second))
	buf.WriteString("\n")
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	if err := os.WriteFile(s.path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write status log: %w", err)
	}
	return nil
}

// StatusLine renders one step's snapshot line using the fixed markers the
// viewer recognizes: done, in progress with count, pending, or failed.
func StatusLine(rec StepRecord) string {
	switch rec.Status {
	case StatusCompleted:
		return fmt.Sprintf("%-10s done (%d items)", rec.Name+":", rec.Items)
	case StatusRunning:
		return fmt.Sprintf("%-10s in progress", rec.Name+":")
	case StatusFailed:
		if rec.Error != "" {
			return fmt.Sprintf("%-10s failed: %s", rec.Name+":", rec.Error)
		}
		return fmt.Sprintf("%-10s failed", rec.Name+":")
	default:
		return fmt.Sprintf("%-10s pending", rec.Name+":")
	}
}
