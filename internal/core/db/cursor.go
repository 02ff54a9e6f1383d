package db

import (
	"database/sql"
	"fmt"
	"time"
)

// GetSyncCursor reads the singleton cursor row. The row is seeded by the
// initial migration, so a missing row simply reads as an empty cursor.
func (db *DB) GetSyncCursor() (SyncCursor, error) {
	var raw sql.NullString
	err := db.db.QueryRow(`SELECT last_successful_sync_at FROM sync_cursor WHERE id = 1`).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return SyncCursor{}, nil
		}
		return SyncCursor{}, fmt.Errorf("failed to read sync cursor: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return SyncCursor{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw.String)
	if err != nil {
		return SyncCursor{}, fmt.Errorf("failed to parse sync cursor timestamp: %w", err)
	}
	return SyncCursor{LastSuccessfulSyncAt: &t}, nil
}

// SetLastSuccessfulSyncAt advances the cursor after a successful cycle.
func (db *DB) SetLastSuccessfulSyncAt(t time.Time) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if _, err := db.db.Exec(`
		INSERT INTO sync_cursor (id, last_successful_sync_at) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET last_successful_sync_at = excluded.last_successful_sync_at
	`, t.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to update sync cursor: %w", err)
	}
	return nil
}
