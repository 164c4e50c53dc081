package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Get returns the cached render for path if its checksum matches, or nil.
func (db *DB) Get(path, checksum string) (*Entry, error) {
	var (
		e        Entry
		warnings string
	)
	err := db.conn.QueryRow(`
		SELECT path, checksum, html, warnings
		FROM renders
		WHERE path = ? AND checksum = ?
	`, path, checksum).Scan(&e.Path, &e.Checksum, &e.HTML, &warnings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(warnings), &e.Warnings); err != nil {
		return nil, fmt.Errorf("cache: decode warnings for %s: %w", path, err)
	}
	return &e, nil
}

// Put inserts or replaces the render for e.Path.
func (db *DB) Put(e Entry) error {
	warnings := []byte("[]")
	if len(e.Warnings) > 0 {
		var err error
		if warnings, err = json.Marshal(e.Warnings); err != nil {
			return fmt.Errorf("cache: encode warnings: %w", err)
		}
	}
	_, err := db.conn.Exec(`
		INSERT INTO renders (path, checksum, html, warnings, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			html       = excluded.html,
			warnings   = excluded.warnings,
			updated_at = excluded.updated_at
	`, e.Path, e.Checksum, e.HTML, string(warnings), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", e.Path, err)
	}
	return nil
}

// Prune deletes every row whose path is not in keep and returns how many
// rows were removed.
func (db *DB) Prune(keep map[string]struct{}) (int, error) {
	paths, err := db.paths()
	if err != nil {
		return 0, err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("cache: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	removed := 0
	for _, p := range paths {
		if _, ok := keep[p]; ok {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM renders WHERE path = ?`, p); err != nil {
			return 0, fmt.Errorf("cache: prune %s: %w", p, err)
		}
		removed++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("cache: commit prune: %w", err)
	}
	return removed, nil
}

func (db *DB) paths() ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM renders`)
	if err != nil {
		return nil, fmt.Errorf("cache: list paths: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
