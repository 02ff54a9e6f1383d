package core

import (
	"github.com/Yigal/bookmarkable/internal/core/db"
)

// Status classifies a URL for capture surfaces (badge text, CLI output).
type Status string

const (
	// StatusUnsaved means no live record exists for the URL.
	StatusUnsaved Status = "unsaved"
	// StatusSaved means the record exists and the service holds its latest
	// state.
	StatusSaved Status = "saved"
	// StatusSavedPendingSync means the record exists but carries changes the
	// service has not seen yet.
	StatusSavedPendingSync Status = "saved_pending_sync"
)

// StatusFor projects the store's record for a URL onto the three badge
// states. Archived records read as unsaved: the user removed them, so the
// URL is capturable again. The returned bookmark is nil for unknown URLs.
func StatusFor(database *db.DB, rawURL string) (Status, *db.Bookmark, error) {
	b, err := database.FindByURL(rawURL)
	if err != nil {
		return StatusUnsaved, nil, err
	}
	if b == nil || b.Archived {
		return StatusUnsaved, b, nil
	}
	if b.SyncState.Dirty() {
		return StatusSavedPendingSync, b, nil
	}
	return StatusSaved, b, nil
}
