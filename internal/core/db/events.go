package db

import "github.com/rs/zerolog/log"

// ------------------------------
// Event System
// ------------------------------
//
// The DB emits typed events when bookmarks are captured, amended, archived,
// deleted, or reconciled with the remote service. Register listeners to
// react to these changes: the daemon points capture-side events at the sync
// coordinator, and a presentation layer can use them as its storage-change
// notification to recompute badge status.
//
// Listeners run synchronously, in registration order, after the write
// succeeds and outside the store's write lock. A listener that needs to do
// real work should hand it off:
//
//	store.RegisterEventListener(db.OnBookmarkCreatedEvent, func(event db.Event) error {
//	    syncer.SyncNow()
//	    return nil
//	})

// Event is implemented by every notification the store publishes.
type Event interface {
	Kind() EventKind
}

// EventKind identifies which store mutation produced an event.
type EventKind int

const (
	// OnBookmarkCreatedEvent fires when a bookmark is captured.
	OnBookmarkCreatedEvent EventKind = iota
	// OnBookmarkUpdatedEvent fires when a bookmark's fields change locally,
	// including restores from the archive.
	OnBookmarkUpdatedEvent
	// OnNoteAmendedEvent fires when a duplicate capture amends a note.
	OnNoteAmendedEvent
	// OnBookmarkArchivedEvent fires when a bookmark is soft-deleted.
	OnBookmarkArchivedEvent
	// OnBookmarkDeletedEvent fires when a bookmark is removed outright.
	OnBookmarkDeletedEvent
	// OnBookmarkSyncedEvent fires when a record reaches the synced state,
	// either by a push acknowledgment or a pull merge.
	OnBookmarkSyncedEvent
)

var eventKindNames = map[EventKind]string{
	OnBookmarkCreatedEvent:  "bookmark_created",
	OnBookmarkUpdatedEvent:  "bookmark_updated",
	OnNoteAmendedEvent:      "note_amended",
	OnBookmarkArchivedEvent: "bookmark_archived",
	OnBookmarkDeletedEvent:  "bookmark_deleted",
	OnBookmarkSyncedEvent:   "bookmark_synced",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// BookmarkCreatedEvent reports a freshly inserted record.
type BookmarkCreatedEvent struct {
	Bookmark Bookmark
}

func (e BookmarkCreatedEvent) Kind() EventKind { return OnBookmarkCreatedEvent }

// BookmarkUpdatedEvent reports a local field update.
type BookmarkUpdatedEvent struct {
	Bookmark Bookmark
}

func (e BookmarkUpdatedEvent) Kind() EventKind { return OnBookmarkUpdatedEvent }

// NoteAmendedEvent reports a note amendment on an existing record.
type NoteAmendedEvent struct {
	Bookmark Bookmark
}

func (e NoteAmendedEvent) Kind() EventKind { return OnNoteAmendedEvent }

// BookmarkArchivedEvent reports a soft deletion.
type BookmarkArchivedEvent struct {
	Bookmark Bookmark
}

func (e BookmarkArchivedEvent) Kind() EventKind { return OnBookmarkArchivedEvent }

// BookmarkDeletedEvent reports a hard deletion. The payload holds the record
// as it was before the delete, when it could still be read.
type BookmarkDeletedEvent struct {
	Bookmark Bookmark
}

func (e BookmarkDeletedEvent) Kind() EventKind { return OnBookmarkDeletedEvent }

// BookmarkSyncedEvent reports a record transitioning to synced.
type BookmarkSyncedEvent struct {
	Bookmark Bookmark
}

func (e BookmarkSyncedEvent) Kind() EventKind { return OnBookmarkSyncedEvent }

// EventListener handles events of the kind it was registered for. A non-nil
// return is logged and does not affect other listeners or the store write.
type EventListener func(event Event) error

// RegisterEventListener subscribes a listener to one event kind. The
// listener map is not guarded; register everything during startup, before
// the store starts taking writes.
func (db *DB) RegisterEventListener(eventKind EventKind, listener EventListener) {
	db.eventListeners[eventKind] = append(db.eventListeners[eventKind], listener)
}

func (db *DB) emit(event Event) {
	for _, fn := range db.eventListeners[event.Kind()] {
		if err := fn(event); err != nil {
			log.Warn().Err(err).Stringer("kind", event.Kind()).Msg("event listener error")
		}
	}
}
