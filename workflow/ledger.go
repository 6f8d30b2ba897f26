// ABOUTME: Append-only progress ledger recording absolute paths of successfully described images.
// ABOUTME: The ledger is the sole authoritative skip signal that makes the describe step idempotent.
package workflow

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Ledger is the durable record of which images have already been described in
// this output directory. One absolute path per line, append-only, never
// rewritten or compacted.
type Ledger struct {
	path string
}

// NewLedger returns a ledger handle for the given run directory. The file is
// not created until the first Record call.
func NewLedger(rd *RunDir) *Ledger {
	return &Ledger{path: rd.LedgerPath()}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string { return l.path }

// Load reads the ledger and returns the set of already-described image paths.
// A missing file is not an error: it means the describe step starts from zero.
func (l *Ledger) Load() (map[string]bool, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	done := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			done[line] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return done, nil
}

// Count returns the number of entries in the ledger. Missing file counts as zero.
func (l *Ledger) Count() (int, error) {
	done, err := l.Load()
	if err != nil {
		return 0, err
	}
	return len(done), nil
}

// Record appends one image path and syncs to disk before returning, so that a
// crash immediately after this call still leaves a durable record. Appending
// happens only after a successful provider call; failed images stay absent and
// are naturally retried on the next resume.
func (l *Ledger) Record(absPath string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, absPath); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	return nil
}
