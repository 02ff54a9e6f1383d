package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// ErrInvalidURL is returned when a bookmark URL fails validation.
var ErrInvalidURL = errors.New("invalid URL")

// ValidateBookmarkURL validates that a URL is acceptable for bookmarking.
// It requires the URL to have http or https scheme and a non-empty host.
func ValidateBookmarkURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return nil
}

// NormalizeURL validates a bookmark URL and returns the form used as the
// store's natural key: surrounding whitespace trimmed and the fragment
// removed. Every path that stores or looks up a URL goes through this, so
// uniqueness is always judged on the normalized string. Nothing else is
// rewritten (no case folding, no query-parameter stripping).
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if err := ValidateBookmarkURL(trimmed); err != nil {
		return "", err
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	u.Fragment = ""
	return u.String(), nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ------------------------------
// Row scanning
// ------------------------------

const bookmarkColumns = `local_id, canonical_id, url, title, description, note, image_url, archived, sync_state, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBookmarkRow scans one bookmarks row and validates it. Invalid rows
// (unknown sync state, empty URL) come back as *StoreCorruptionError so
// callers can isolate the damage to that single record.
func scanBookmarkRow(s rowScanner) (*Bookmark, error) {
	var b Bookmark
	var canonical sql.NullInt64
	var archived int
	var state string
	if err := s.Scan(&b.LocalID, &canonical, &b.URL, &b.Title, &b.Description, &b.Note, &b.ImageURL, &archived, &state, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if canonical.Valid {
		b.CanonicalID = &canonical.Int64
	}
	b.Archived = archived != 0
	b.SyncState = SyncState(state)
	if !b.SyncState.Valid() {
		return nil, &StoreCorruptionError{LocalID: b.LocalID, URL: b.URL, Reason: fmt.Sprintf("unknown sync state %q", state)}
	}
	if strings.TrimSpace(b.URL) == "" {
		return nil, &StoreCorruptionError{LocalID: b.LocalID, Reason: "empty URL"}
	}
	return &b, nil
}

// ------------------------------
// Bookmark methods
// ------------------------------

// CreateBookmarkParams carries the caller-supplied fields for a new bookmark.
type CreateBookmarkParams struct {
	URL         string
	Title       string
	Description string
	Note        string
	ImageURL    string
	Tags        []string
}

// CreateBookmark inserts a new bookmark with syncState local_only.
//
// The URL is normalized and validated first; ErrInvalidURL is returned if it
// fails. A URL that already has a record returns *DuplicateError carrying the
// existing record. The dedup lookup runs under the write lock, and the
// UNIQUE constraint on url backstops it at the schema level.
// Emits a BookmarkCreatedEvent after a successful insert.
func (db *DB) CreateBookmark(p CreateBookmarkParams) (*Bookmark, error) {
	b, err := db.createBookmark(p)
	if err != nil {
		return nil, err
	}
	db.emit(BookmarkCreatedEvent{Bookmark: *b})
	return b, nil
}

func (db *DB) createBookmark(p CreateBookmarkParams) (*Bookmark, error) {
	normalized, err := NormalizeURL(p.URL)
	if err != nil {
		return nil, err
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	existing, err := db.findByURL(normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateError{Existing: existing}
	}

	now := nowRFC3339()
	b := &Bookmark{
		LocalID:     uuid.NewString(),
		URL:         normalized,
		Title:       p.Title,
		Description: p.Description,
		Note:        p.Note,
		ImageURL:    p.ImageURL,
		Tags:        normalizeTags(p.Tags),
		SyncState:   SyncLocalOnly,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := db.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO bookmarks (local_id, canonical_id, url, title, description, note, image_url, archived, sync_state, created_at, updated_at)
		VALUES (?, NULL, ?, ?, ?, ?, ?, 0, ?, ?, ?)
	`, b.LocalID, b.URL, b.Title, b.Description, b.Note, b.ImageURL, string(b.SyncState), b.CreatedAt, b.UpdatedAt); err != nil {
		tx.Rollback()
		// Another process writing the same file can beat the lookup; the
		// schema surfaces that as a unique violation on url.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			if existing, ferr := db.findByURL(normalized); ferr == nil && existing != nil {
				return nil, &DuplicateError{Existing: existing}
			}
		}
		return nil, fmt.Errorf("failed to add bookmark: %w", err)
	}
	if err := replaceTagsTx(tx, b.LocalID, b.Tags); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return b, nil
}

// GetBookmark retrieves a bookmark by its local identifier.
func (db *DB) GetBookmark(localID string) (*Bookmark, error) {
	row := db.db.QueryRow(`SELECT `+bookmarkColumns+` FROM bookmarks WHERE local_id = ?`, localID)
	b, err := scanBookmarkRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{LocalID: localID}
		}
		if IsCorruption(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	b.Tags, err = db.loadTags(b.LocalID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FindByURL is the dedup lookup: it returns the record whose natural key
// matches the normalized URL, or nil with a nil error when none exists.
func (db *DB) FindByURL(rawURL string) (*Bookmark, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	return db.findByURL(normalized)
}

func (db *DB) findByURL(normalized string) (*Bookmark, error) {
	row := db.db.QueryRow(`SELECT `+bookmarkColumns+` FROM bookmarks WHERE url = ?`, normalized)
	b, err := scanBookmarkRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if IsCorruption(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find bookmark by URL: %w", err)
	}
	b.Tags, err = db.loadTags(b.LocalID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListOptions filters ListBookmarks. The zero value lists every record
// except archived ones, newest first.
type ListOptions struct {
	// State filters to one sync state when non-empty.
	State SyncState
	// Tag filters to bookmarks carrying this tag.
	Tag string
	// IncludeArchived includes soft-deleted records.
	IncludeArchived bool
	// Limit bounds the result when > 0.
	Limit int
}

func (db *DB) ListBookmarks(opts ListOptions) ([]Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks`
	var where []string
	var args []any
	if !opts.IncludeArchived {
		where = append(where, "archived = 0")
	}
	if opts.State != "" {
		where = append(where, "sync_state = ?")
		args = append(args, string(opts.State))
	}
	if opts.Tag != "" {
		where = append(where, "local_id IN (SELECT bookmark_id FROM bookmark_tags WHERE tag_name = ?)")
		args = append(args, opts.Tag)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, local_id"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close rows")
		}
	}()

	return db.collectBookmarks(rows)
}

// ListPendingUpload returns the records still owing an upload, oldest
// mutation first so push order is deterministic. Archived records are
// included: archival is itself a pending mutation.
func (db *DB) ListPendingUpload() ([]Bookmark, error) {
	rows, err := db.db.Query(`
		SELECT `+bookmarkColumns+`
		FROM bookmarks
		WHERE sync_state IN (?, ?)
		ORDER BY updated_at ASC, local_id
	`, string(SyncLocalOnly), string(SyncPendingUpload))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bookmarks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close rows")
		}
	}()

	return db.collectBookmarks(rows)
}

// collectBookmarks drains rows into records, loading tags for each. Corrupt
// rows are logged and skipped so one bad row cannot poison a whole listing.
func (db *DB) collectBookmarks(rows *sql.Rows) ([]Bookmark, error) {
	var out []Bookmark
	for rows.Next() {
		b, err := scanBookmarkRow(rows)
		if err != nil {
			var corrupt *StoreCorruptionError
			if errors.As(err, &corrupt) {
				log.Warn().Str("local_id", corrupt.LocalID).Str("reason", corrupt.Reason).Msg("skipping corrupt bookmark row")
				continue
			}
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		tags, err := db.loadTags(b.LocalID)
		if err != nil {
			return nil, err
		}
		b.Tags = tags
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}
	return out, nil
}

// UpdateBookmarkParams carries a partial update; nil fields are left as-is.
// SyncState is applied only when the caller sets it; updating fields does
// not implicitly change the upload state.
type UpdateBookmarkParams struct {
	Title       *string
	Description *string
	Note        *string
	ImageURL    *string
	Tags        *[]string
	SyncState   *SyncState
}

// UpdateBookmark applies a partial update to a bookmark and bumps UpdatedAt.
// Emits a BookmarkUpdatedEvent after a successful write.
func (db *DB) UpdateBookmark(localID string, p UpdateBookmarkParams) (*Bookmark, error) {
	b, err := db.updateBookmark(localID, p)
	if err != nil {
		return nil, err
	}
	db.emit(BookmarkUpdatedEvent{Bookmark: *b})
	return b, nil
}

func (db *DB) updateBookmark(localID string, p UpdateBookmarkParams) (*Bookmark, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	b, err := db.GetBookmark(localID)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Note != nil {
		b.Note = *p.Note
	}
	if p.ImageURL != nil {
		b.ImageURL = *p.ImageURL
	}
	if p.Tags != nil {
		b.Tags = normalizeTags(*p.Tags)
	}
	if p.SyncState != nil {
		if !p.SyncState.Valid() {
			return nil, fmt.Errorf("invalid sync state %q", *p.SyncState)
		}
		b.SyncState = *p.SyncState
	}
	b.UpdatedAt = nowRFC3339()

	tx, err := db.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(`
		UPDATE bookmarks
		SET title = ?, description = ?, note = ?, image_url = ?, sync_state = ?, updated_at = ?
		WHERE local_id = ?
	`, b.Title, b.Description, b.Note, b.ImageURL, string(b.SyncState), b.UpdatedAt, b.LocalID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update bookmark: %w", err)
	}
	if p.Tags != nil {
		if err := replaceTagsTx(tx, b.LocalID, b.Tags); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return b, nil
}

// AmendNote replaces the note on the record for url with exactly text and
// marks the record pending upload. Repeating the same call is idempotent:
// the note holds the last value, it never accumulates.
// Returns *NotFoundError when no record exists for the URL.
// Emits a NoteAmendedEvent after a successful write.
func (db *DB) AmendNote(rawURL string, text string) (*Bookmark, error) {
	b, err := db.amendNote(rawURL, text)
	if err != nil {
		return nil, err
	}
	db.emit(NoteAmendedEvent{Bookmark: *b})
	return b, nil
}

func (db *DB) amendNote(rawURL string, text string) (*Bookmark, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.db.Exec(`
		UPDATE bookmarks
		SET note = ?, sync_state = ?, updated_at = ?
		WHERE url = ?
	`, text, string(SyncPendingUpload), nowRFC3339(), normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to amend note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return nil, &NotFoundError{URL: normalized}
	}
	return db.findByURL(normalized)
}

// ArchiveBookmark soft-deletes the record for url. The archival is a local
// mutation like any other: it marks the record pending so the next push
// propagates it. Returns *NotFoundError when no record exists.
// Emits a BookmarkArchivedEvent after a successful write.
func (db *DB) ArchiveBookmark(rawURL string) (*Bookmark, error) {
	b, err := db.setArchived(rawURL, true)
	if err != nil {
		return nil, err
	}
	db.emit(BookmarkArchivedEvent{Bookmark: *b})
	return b, nil
}

// RestoreBookmark reverses a soft delete, keeping the record's identifiers.
// Emits a BookmarkUpdatedEvent after a successful write.
func (db *DB) RestoreBookmark(rawURL string) (*Bookmark, error) {
	b, err := db.setArchived(rawURL, false)
	if err != nil {
		return nil, err
	}
	db.emit(BookmarkUpdatedEvent{Bookmark: *b})
	return b, nil
}

func (db *DB) setArchived(rawURL string, archived bool) (*Bookmark, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	flag := 0
	if archived {
		flag = 1
	}
	// The flip itself is a pending mutation: it has to propagate on push.
	res, err := db.db.Exec(`
		UPDATE bookmarks
		SET archived = ?, sync_state = ?, updated_at = ?
		WHERE url = ?
	`, flag, string(SyncPendingUpload), nowRFC3339(), normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to set archived flag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return nil, &NotFoundError{URL: normalized}
	}
	return db.findByURL(normalized)
}

// MarkSynced records a successful push: it sets the canonical ID and flips
// the record to synced. The write only lands if updated_at still equals
// seenUpdatedAt: a mutation that slipped in while the push was in flight
// keeps the record pending, and the next cycle re-pushes it. The returned
// bool reports whether the mark was applied.
// Emits a BookmarkSyncedEvent when applied.
func (db *DB) MarkSynced(localID string, canonicalID int64, seenUpdatedAt string) (bool, error) {
	applied, b, err := db.markSynced(localID, canonicalID, seenUpdatedAt)
	if err != nil {
		return false, err
	}
	if applied {
		db.emit(BookmarkSyncedEvent{Bookmark: *b})
	}
	return applied, nil
}

func (db *DB) markSynced(localID string, canonicalID int64, seenUpdatedAt string) (bool, *Bookmark, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.db.Exec(`
		UPDATE bookmarks
		SET canonical_id = ?, sync_state = ?
		WHERE local_id = ? AND updated_at = ?
	`, canonicalID, string(SyncSynced), localID, seenUpdatedAt)
	if err != nil {
		return false, nil, fmt.Errorf("failed to mark bookmark synced: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, nil, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		b, err := db.GetBookmark(localID)
		if err != nil {
			return false, nil, err
		}
		// Record mutated mid-push; it stays pending and carries the adopted
		// canonical ID so the next push updates instead of re-creating.
		if b.CanonicalID == nil {
			if _, err := db.db.Exec(`UPDATE bookmarks SET canonical_id = ? WHERE local_id = ?`, canonicalID, localID); err != nil {
				return false, nil, fmt.Errorf("failed to record canonical id: %w", err)
			}
		}
		return false, nil, nil
	}

	b, err := db.GetBookmark(localID)
	if err != nil {
		return false, nil, err
	}
	return true, b, nil
}

// RemoteBookmark carries the authoritative fields applied during pull merge.
type RemoteBookmark struct {
	CanonicalID int64
	URL         string
	Title       string
	Description string
	Note        string
	ImageURL    string
	Tags        []string
	Archived    bool
	// UpdatedAt is the remote's RFC3339 timestamp; stored as-is when set.
	UpdatedAt string
}

// ApplyRemote merges one authoritative record into the store:
//   - no record for the URL: insert it as synced with the remote's canonical ID
//   - record exists and is synced: overwrite its fields (remote wins)
//   - record exists and is dirty: leave it alone, local edits are protected
//     until the next push resolves them
//
// The returned bool reports whether the merge was applied; the record
// returned is the stored state afterward either way.
// Emits a BookmarkSyncedEvent when applied.
func (db *DB) ApplyRemote(rb RemoteBookmark) (bool, *Bookmark, error) {
	applied, b, err := db.applyRemote(rb)
	if err != nil {
		return false, nil, err
	}
	if applied {
		db.emit(BookmarkSyncedEvent{Bookmark: *b})
	}
	return applied, b, nil
}

func (db *DB) applyRemote(rb RemoteBookmark) (bool, *Bookmark, error) {
	normalized, err := NormalizeURL(rb.URL)
	if err != nil {
		return false, nil, err
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	local, err := db.findByURL(normalized)
	if err != nil {
		return false, nil, err
	}

	stamp := rb.UpdatedAt
	if stamp == "" {
		stamp = nowRFC3339()
	}
	archived := 0
	if rb.Archived {
		archived = 1
	}
	tags := normalizeTags(rb.Tags)

	if local == nil {
		b := &Bookmark{
			LocalID:     uuid.NewString(),
			CanonicalID: &rb.CanonicalID,
			URL:         normalized,
			Title:       rb.Title,
			Description: rb.Description,
			Note:        rb.Note,
			ImageURL:    rb.ImageURL,
			Tags:        tags,
			Archived:    rb.Archived,
			SyncState:   SyncSynced,
			CreatedAt:   stamp,
			UpdatedAt:   stamp,
		}
		tx, err := db.db.Begin()
		if err != nil {
			return false, nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO bookmarks (local_id, canonical_id, url, title, description, note, image_url, archived, sync_state, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, b.LocalID, rb.CanonicalID, b.URL, b.Title, b.Description, b.Note, b.ImageURL, archived, string(SyncSynced), b.CreatedAt, b.UpdatedAt); err != nil {
			tx.Rollback()
			return false, nil, fmt.Errorf("failed to insert remote bookmark: %w", err)
		}
		if err := replaceTagsTx(tx, b.LocalID, tags); err != nil {
			tx.Rollback()
			return false, nil, err
		}
		if err := tx.Commit(); err != nil {
			return false, nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return true, b, nil
	}

	if local.SyncState.Dirty() {
		return false, local, nil
	}

	tx, err := db.db.Begin()
	if err != nil {
		return false, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(`
		UPDATE bookmarks
		SET canonical_id = ?, title = ?, description = ?, note = ?, image_url = ?, archived = ?, sync_state = ?, updated_at = ?
		WHERE local_id = ?
	`, rb.CanonicalID, rb.Title, rb.Description, rb.Note, rb.ImageURL, archived, string(SyncSynced), stamp, local.LocalID); err != nil {
		tx.Rollback()
		return false, nil, fmt.Errorf("failed to overwrite from remote: %w", err)
	}
	if err := replaceTagsTx(tx, local.LocalID, tags); err != nil {
		tx.Rollback()
		return false, nil, err
	}
	if err := tx.Commit(); err != nil {
		return false, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	b, err := db.findByURL(normalized)
	if err != nil {
		return false, nil, err
	}
	return true, b, nil
}

// DeleteBookmark removes a record outright. Normal flows archive instead;
// this is for maintenance (resetting a client, clearing test data).
// Emits a BookmarkDeletedEvent after successful deletion.
func (db *DB) DeleteBookmark(localID string) error {
	b, err := db.deleteBookmark(localID)
	if err != nil {
		return err
	}
	db.emit(BookmarkDeletedEvent{Bookmark: *b})
	return nil
}

func (db *DB) deleteBookmark(localID string) (*Bookmark, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	// Fetch bookmark before deletion to include in the event
	b, _ := db.GetBookmark(localID)

	res, err := db.db.Exec("DELETE FROM bookmarks WHERE local_id = ?", localID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return nil, &NotFoundError{LocalID: localID}
	}

	// If we couldn't fetch earlier, at least include the ID
	if b == nil {
		b = &Bookmark{LocalID: localID}
	}
	return b, nil
}
