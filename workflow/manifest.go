// ABOUTME: Structured run manifest persisted as JSON with atomic temp-file-and-rename writes.
// ABOUTME: The manifest is the preferred source for resume reconstruction, ahead of legacy log scraping.
package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest is the on-disk record of a workflow run's configuration and per-step
// outcomes. It is rewritten after every step transition so a later --resume
// invocation can reconstruct state without parsing free-text logs.
type Manifest struct {
	RunID       string       `json:"run_id"`
	InputDir    string       `json:"input_dir"`
	Provider    string       `json:"provider,omitempty"`
	Model       string       `json:"model,omitempty"`
	PromptStyle string       `json:"prompt_style,omitempty"`
	ConfigPath  string       `json:"config_path,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Steps       []StepRecord `json:"steps"`
}

// StepRecordFor returns a pointer to the record for the named step, or nil.
func (m *Manifest) StepRecordFor(step Step) *StepRecord {
	for i := range m.Steps {
		if m.Steps[i].Name == step {
			return &m.Steps[i]
		}
	}
	return nil
}

// Save writes the manifest using a temp file + rename so readers (the viewer,
// a concurrent resume attempt) never observe a torn write.
func (m *Manifest) Save(path string) error {
	m.UpdatedAt = time.Now()
	return writeJSONAtomic(path, m)
}

// LoadManifest reads and parses a run manifest. os.IsNotExist errors pass
// through so callers can fall back to the legacy log parser.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// writeJSONAtomic writes a JSON-encoded value to a file using a temp file + rename for atomicity.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
