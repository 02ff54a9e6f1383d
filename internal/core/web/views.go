package web

import (
	"time"

	"github.com/Yigal/bookmarkable/internal/core/db"
	"github.com/Yigal/bookmarkable/internal/core/sync"
)

// bookmarkView is the JSON shape of a bookmark record.
type bookmarkView struct {
	LocalID     string   `json:"local_id"`
	CanonicalID *int64   `json:"canonical_id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Note        string   `json:"note,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Archived    bool     `json:"archived"`
	SyncState   string   `json:"sync_state"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func toBookmarkView(b *db.Bookmark) *bookmarkView {
	if b == nil {
		return nil
	}
	return &bookmarkView{
		LocalID:     b.LocalID,
		CanonicalID: b.CanonicalID,
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Description,
		Note:        b.Note,
		ImageURL:    b.ImageURL,
		Tags:        b.Tags,
		Archived:    b.Archived,
		SyncState:   string(b.SyncState),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// captureResponse reports what a capture did with the posted URL.
type captureResponse struct {
	Bookmark *bookmarkView `json:"bookmark"`
	Created  bool          `json:"created"`
	Amended  bool          `json:"amended"`
	Restored bool          `json:"restored"`
}

type bookmarkResponse struct {
	Bookmark *bookmarkView `json:"bookmark"`
}

type bookmarkListResponse struct {
	Bookmarks []*bookmarkView `json:"bookmarks"`
}

type tagView struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type tagListResponse struct {
	Tags []tagView `json:"tags"`
}

type statusResponse struct {
	Status   string        `json:"status"`
	Bookmark *bookmarkView `json:"bookmark,omitempty"`
}

// syncResultView is the JSON shape of a finished sync cycle.
type syncResultView struct {
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Pushed     int       `json:"pushed"`
	Pulled     int       `json:"pulled"`
	Skipped    int       `json:"skipped"`
	Failures   int       `json:"failures"`
}

type syncStatusResponse struct {
	State                string          `json:"state"`
	LastResult           *syncResultView `json:"last_result,omitempty"`
	LastSuccessfulSyncAt *time.Time      `json:"last_successful_sync_at,omitempty"`
}

func toSyncStatusResponse(st sync.Status) syncStatusResponse {
	resp := syncStatusResponse{State: string(st.State)}
	if st.LastResult != nil {
		r := st.LastResult
		resp.LastResult = &syncResultView{
			Outcome:    string(r.Outcome),
			Message:    r.Message,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Pushed:     r.Pushed,
			Pulled:     r.Pulled,
			Skipped:    r.Skipped,
			Failures:   r.Failures,
		}
	}
	return resp
}
