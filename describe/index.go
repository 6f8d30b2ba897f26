// ABOUTME: SQLite index over description entries for fast lookup and search.
// ABOUTME: The index is a rebuildable cache; the descriptions file and ledger stay authoritative.
package describe

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Index is a queryable cache of description entries. Losing it costs nothing:
// Rebuild reconstructs it from the descriptions file.
type Index struct {
	db *sql.DB
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS descriptions (
	id       TEXT PRIMARY KEY,
	path     TEXT NOT NULL,
	provider TEXT NOT NULL,
	model    TEXT NOT NULL,
	style    TEXT NOT NULL,
	ts       TEXT NOT NULL,
	text     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_descriptions_path ON descriptions(path);
`

// OpenIndex opens (creating if needed) the index database at path.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Put upserts one entry.
func (ix *Index) Put(e Entry) error {
	_, err := ix.db.Exec(`
		INSERT INTO descriptions (id, path, provider, model, style, ts, text)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path, provider = excluded.provider,
			model = excluded.model, style = excluded.style,
			ts = excluded.ts, text = excluded.text`,
		e.ID, e.Path, e.Provider, e.Model, e.Style, e.Time.Format(time.RFC3339), e.Text)
	if err != nil {
		return fmt.Errorf("index put: %w", err)
	}
	return nil
}

// Rebuild replaces all rows with the given entries in one transaction.
func (ix *Index) Rebuild(entries []Entry) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM descriptions`); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO descriptions (id, path, provider, model, style, ts, text)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.ID, e.Path, e.Provider, e.Model, e.Style, e.Time.Format(time.RFC3339), e.Text); err != nil {
			return fmt.Errorf("insert %s: %w", e.Path, err)
		}
	}
	return tx.Commit()
}

// Search returns entries whose path or text contains the query substring,
// ordered by path. An empty query returns everything.
func (ix *Index) Search(query string) ([]Entry, error) {
	pattern := "%" + strings.ReplaceAll(query, "%", `\%`) + "%"
	rows, err := ix.db.Query(`
		SELECT id, path, provider, model, style, ts, text
		FROM descriptions
		WHERE path LIKE ? ESCAPE '\' OR text LIKE ? ESCAPE '\'
		ORDER BY path`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &e.Path, &e.Provider, &e.Model, &e.Style, &ts, &e.Text); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Time, _ = time.Parse(time.RFC3339, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of indexed entries.
func (ix *Index) Count() (int, error) {
	var n int
	if err := ix.db.QueryRow(`SELECT COUNT(*) FROM descriptions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index count: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (ix *Index) Close() error { return ix.db.Close() }
