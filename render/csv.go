// ABOUTME: CSV export of description entries for spreadsheet consumers.
package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/mediascribe/mediascribe/describe"
)

// WriteCSV exports entries as CSV with a header row.
func WriteCSV(outPath string, entries []describe.Entry) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"path", "provider", "model", "style", "time", "description"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{e.Path, e.Provider, e.Model, e.Style, e.Time.Format(time.RFC3339), e.Text}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row for %s: %w", e.Path, err)
		}
	}
	w.Flush()
	return w.Error()
}
