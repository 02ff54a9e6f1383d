// Package core holds the capture workflow: saving a URL into the local
// store, projecting its save state for the UI surfaces, and scraping page
// metadata to prefill new records. Everything here works against the local
// store only; talking to the bookmark service is the sync package's job.
package core

import (
	"errors"

	"github.com/Yigal/bookmarkable/internal/core/db"
)

// CaptureInput carries what a capture surface knows about the page being
// saved. Only URL is required.
type CaptureInput struct {
	URL         string
	Title       string
	Description string
	Note        string
	ImageURL    string
	Tags        []string
}

// CaptureResult reports what a capture did.
type CaptureResult struct {
	Bookmark *db.Bookmark
	// Created is true when a new record was inserted.
	Created bool
	// Amended is true when the URL already had a record and this capture
	// replaced its note.
	Amended bool
	// Restored is true when the existing record was archived and this
	// capture brought it back.
	Restored bool
}

// Capture saves a URL into the local store. Saving an already-saved URL is
// not an error: an archived record is restored, a capture carrying a note
// replaces the existing record's note, and a bare re-save leaves the record
// untouched. Captures never touch the network; the record becomes visible to
// the next sync cycle through its sync state.
func Capture(database *db.DB, in CaptureInput) (CaptureResult, error) {
	b, err := database.CreateBookmark(db.CreateBookmarkParams{
		URL:         in.URL,
		Title:       in.Title,
		Description: in.Description,
		Note:        in.Note,
		ImageURL:    in.ImageURL,
		Tags:        in.Tags,
	})
	if err == nil {
		return CaptureResult{Bookmark: b, Created: true}, nil
	}

	var dup *db.DuplicateError
	if !errors.As(err, &dup) {
		return CaptureResult{}, err
	}

	res := CaptureResult{Bookmark: dup.Existing}
	if dup.Existing.Archived {
		restored, err := database.RestoreBookmark(in.URL)
		if err != nil {
			return CaptureResult{}, err
		}
		res.Bookmark = restored
		res.Restored = true
	}
	if in.Note != "" {
		amended, err := database.AmendNote(in.URL, in.Note)
		if err != nil {
			return CaptureResult{}, err
		}
		res.Bookmark = amended
		res.Amended = true
	}
	return res, nil
}

// AmendNote replaces the note on the record for url. It exists alongside
// Capture for surfaces that know the record exists and only want to change
// the annotation.
func AmendNote(database *db.DB, url, note string) (*db.Bookmark, error) {
	return database.AmendNote(url, note)
}

// Archive soft-deletes the record for url.
func Archive(database *db.DB, url string) (*db.Bookmark, error) {
	return database.ArchiveBookmark(url)
}
