// ABOUTME: Append-only description entry records in the human-facing output file.
// ABOUTME: One record per described image: header fields, then the generated text, delimited by a record marker line.
package describe

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// recordMarker starts each entry. Description text never begins a line with
// it because parsed text is trimmed and the marker is checked at line start.
const recordMarker = "=== "

// Entry is one generated description.
type Entry struct {
	ID       string
	Path     string
	Provider string
	Model    string
	Style    string
	Time     time.Time
	Text     string
}

// NewEntry builds an entry with a fresh UUID and current timestamp.
func NewEntry(path, provider, model, style, text string) Entry {
	return Entry{
		ID:       uuid.NewString(),
		Path:     path,
		Provider: provider,
		Model:    model,
		Style:    style,
		Time:     time.Now().UTC(),
		Text:     text,
	}
}

// AppendEntry writes one entry to the descriptions file, syncing before
// return. The companion ledger append happens after this succeeds, so a crash
// between the two leaves the description present and the ledger entry absent
// (the image is then re-described on resume, overwriting nothing).
func AppendEntry(path string, e Entry) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open descriptions file: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n", recordMarker, e.ID)
	fmt.Fprintf(&b, "path: %s\n", e.Path)
	fmt.Fprintf(&b, "provider: %s\n", e.Provider)
	fmt.Fprintf(&b, "model: %s\n", e.Model)
	fmt.Fprintf(&b, "style: %s\n", e.Style)
	fmt.Fprintf(&b, "time: %s\n", e.Time.Format(time.RFC3339))
	fmt.Fprintf(&b, "\n%s\n\n", strings.TrimSpace(e.Text))

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append description entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync descriptions file: %w", err)
	}
	return nil
}

// ReadEntries parses the descriptions file. A missing file returns an empty
// slice. Malformed trailing records (from a crash mid-write) are dropped
// rather than failing the read.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open descriptions file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	var cur *Entry
	var text []string
	inHeader := false

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(strings.Join(text, "\n"))
		if cur.Path != "" && cur.Text != "" {
			entries = append(entries, *cur)
		}
		cur = nil
		text = nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, recordMarker) {
			flush()
			cur = &Entry{ID: strings.TrimSpace(line[len(recordMarker):])}
			inHeader = true
			continue
		}
		if cur == nil {
			continue
		}
		if inHeader {
			if line == "" {
				inHeader = false
				continue
			}
			key, value, ok := strings.Cut(line, ": ")
			if !ok {
				continue
			}
			switch key {
			case "path":
				cur.Path = value
			case "provider":
				cur.Provider = value
			case "model":
				cur.Model = value
			case "style":
				cur.Style = value
			case "time":
				if ts, err := time.Parse(time.RFC3339, value); err == nil {
					cur.Time = ts
				}
			}
			continue
		}
		text = append(text, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read descriptions file: %w", err)
	}
	flush()
	return entries, nil
}
