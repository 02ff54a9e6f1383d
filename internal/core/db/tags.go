package db

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultTagColor is assigned to tags created without an explicit color.
const DefaultTagColor = "#2563eb"

// normalizeTags trims names, drops empties, removes duplicates, and sorts.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (db *DB) loadTags(localID string) ([]string, error) {
	rows, err := db.db.Query(`
		SELECT tag_name FROM bookmark_tags WHERE bookmark_id = ? ORDER BY tag_name
	`, localID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close rows")
		}
	}()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return out, nil
}

// replaceTagsTx rewrites a bookmark's tag associations inside the caller's
// transaction. Unknown tags are created with the default color; existing
// tags keep theirs.
func replaceTagsTx(tx *sql.Tx, localID string, tags []string) error {
	if _, err := tx.Exec(`DELETE FROM bookmark_tags WHERE bookmark_id = ?`, localID); err != nil {
		return fmt.Errorf("failed to clear bookmark tags: %w", err)
	}
	for _, name := range tags {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (name, color) VALUES (?, ?)`, name, DefaultTagColor); err != nil {
			return fmt.Errorf("failed to create tag %q: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO bookmark_tags (bookmark_id, tag_name) VALUES (?, ?)`, localID, name); err != nil {
			return fmt.Errorf("failed to attach tag %q: %w", name, err)
		}
	}
	return nil
}

// UpsertTag creates a tag or updates its color. An empty color leaves an
// existing tag's color alone and gives a new tag the default.
func (db *DB) UpsertTag(name string, color string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, fmt.Errorf("failed to upsert tag: empty name")
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if color == "" {
		if _, err := db.db.Exec(`INSERT OR IGNORE INTO tags (name, color) VALUES (?, ?)`, name, DefaultTagColor); err != nil {
			return Tag{}, fmt.Errorf("failed to upsert tag: %w", err)
		}
	} else {
		if _, err := db.db.Exec(`
			INSERT INTO tags (name, color) VALUES (?, ?)
			ON CONFLICT (name) DO UPDATE SET color = excluded.color
		`, name, color); err != nil {
			return Tag{}, fmt.Errorf("failed to upsert tag: %w", err)
		}
	}

	var t Tag
	if err := db.db.QueryRow(`SELECT name, color FROM tags WHERE name = ?`, name).Scan(&t.Name, &t.Color); err != nil {
		return Tag{}, fmt.Errorf("failed to read back tag: %w", err)
	}
	return t, nil
}

func (db *DB) ListTags() ([]Tag, error) {
	rows, err := db.db.Query(`SELECT name, color FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close rows")
		}
	}()

	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return out, nil
}
