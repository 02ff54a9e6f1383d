package db

import "time"

// SyncState tracks where a bookmark sits in the upload lifecycle.
type SyncState string

const (
	// SyncLocalOnly marks a record that has never been pushed to the remote service.
	SyncLocalOnly SyncState = "local_only"
	// SyncPendingUpload marks a record with a local mutation newer than its last push.
	SyncPendingUpload SyncState = "pending_upload"
	// SyncSynced marks a record whose remote copy reflects the local copy.
	SyncSynced SyncState = "synced"
)

// Valid reports whether s is one of the recognized sync states. Anything else
// read back from storage is treated as row corruption.
func (s SyncState) Valid() bool {
	switch s {
	case SyncLocalOnly, SyncPendingUpload, SyncSynced:
		return true
	}
	return false
}

// Dirty reports whether a record in this state still owes an upload.
func (s SyncState) Dirty() bool {
	return s == SyncLocalOnly || s == SyncPendingUpload
}

type Bookmark struct {
	// LocalID is generated client-side at capture time and never changes.
	LocalID string
	// CanonicalID is the identifier assigned by the remote service. It is nil
	// until the record has been pushed once or was pulled down from the remote.
	CanonicalID *int64
	// URL is the natural key: exactly one record per URL in the store.
	URL         string
	Title       string
	Description string
	Note        string
	ImageURL    string
	Tags        []string
	// Archived is a soft delete; archived records still propagate on push.
	Archived  bool
	SyncState SyncState
	// CreatedAt and UpdatedAt are stored in the DB as RFC3339 text.
	CreatedAt string
	UpdatedAt string
}

type Tag struct {
	Name  string
	Color string
}

// SyncCursor is the process-wide singleton recording the last fully
// successful sync cycle. It exists from first migration on and is only
// ever updated, never deleted.
type SyncCursor struct {
	LastSuccessfulSyncAt *time.Time
}
