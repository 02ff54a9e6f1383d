package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Yigal/bookmarkable/internal/core/db"
	"github.com/Yigal/bookmarkable/internal/core/sync"
)

// jsonRequest builds a request carrying a JSON body.
func jsonRequest(method, path, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// decodeBody unmarshals a recorded response body into dst.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
}

// captureURL posts a capture payload and returns the decoded response.
func captureURL(t *testing.T, server *Server, body string) captureResponse {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/api/bookmarks", body)
	w := httptest.NewRecorder()
	server.handleBookmarks(w, req)
	if w.Code != http.StatusCreated && w.Code != http.StatusOK {
		t.Fatalf("capture failed with status %d: %s", w.Code, w.Body.String())
	}
	var res captureResponse
	decodeBody(t, w, &res)
	return res
}

// archiveURL posts an archive request for url.
func archiveURL(t *testing.T, server *Server, url string) {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/api/bookmarks/archive", `{"url":"`+url+`"}`)
	w := httptest.NewRecorder()
	server.handleArchive(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("archive failed with status %d: %s", w.Code, w.Body.String())
	}
}

// TestHandleBookmarksCapture tests the capture side of /api/bookmarks.
func TestHandleBookmarksCapture(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("POST creates bookmark", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/bookmarks",
			`{"url":"https://example.com/article","title":"Example Article","tags":["reading","go"]}`)
		w := httptest.NewRecorder()

		server.handleBookmarks(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var res captureResponse
		decodeBody(t, w, &res)
		if !res.Created {
			t.Error("expected created to be true")
		}
		if res.Bookmark == nil {
			t.Fatal("expected bookmark in response")
		}
		if res.Bookmark.URL != "https://example.com/article" {
			t.Errorf("expected URL 'https://example.com/article', got %q", res.Bookmark.URL)
		}
		if res.Bookmark.LocalID == "" {
			t.Error("expected local_id to be set")
		}
		if res.Bookmark.CanonicalID != nil {
			t.Errorf("expected canonical_id to be null, got %d", *res.Bookmark.CanonicalID)
		}
		if res.Bookmark.SyncState != string(db.SyncLocalOnly) {
			t.Errorf("expected sync_state %q, got %q", db.SyncLocalOnly, res.Bookmark.SyncState)
		}
		if len(res.Bookmark.Tags) != 2 || res.Bookmark.Tags[0] != "go" || res.Bookmark.Tags[1] != "reading" {
			t.Errorf("expected sorted tags [go reading], got %v", res.Bookmark.Tags)
		}
	})

	t.Run("POST same URL again returns existing record", func(t *testing.T) {
		first := captureURL(t, server, `{"url":"https://example.com/repeat","title":"First"}`)

		req := jsonRequest(http.MethodPost, "/api/bookmarks",
			`{"url":"https://example.com/repeat","title":"Second"}`)
		w := httptest.NewRecorder()

		server.handleBookmarks(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var res captureResponse
		decodeBody(t, w, &res)
		if res.Created || res.Amended || res.Restored {
			t.Errorf("expected a plain re-save, got created=%v amended=%v restored=%v",
				res.Created, res.Amended, res.Restored)
		}
		if res.Bookmark.LocalID != first.Bookmark.LocalID {
			t.Errorf("expected same record, got local_id %q and %q",
				first.Bookmark.LocalID, res.Bookmark.LocalID)
		}
		if res.Bookmark.Title != "First" {
			t.Errorf("expected original title to survive, got %q", res.Bookmark.Title)
		}
	})

	t.Run("POST with note amends the existing record", func(t *testing.T) {
		captureURL(t, server, `{"url":"https://example.com/noted"}`)

		req := jsonRequest(http.MethodPost, "/api/bookmarks",
			`{"url":"https://example.com/noted","note":"read later"}`)
		w := httptest.NewRecorder()

		server.handleBookmarks(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var res captureResponse
		decodeBody(t, w, &res)
		if !res.Amended || res.Created {
			t.Errorf("expected amended re-save, got created=%v amended=%v", res.Created, res.Amended)
		}
		if res.Bookmark.Note != "read later" {
			t.Errorf("expected note 'read later', got %q", res.Bookmark.Note)
		}
		if res.Bookmark.SyncState != string(db.SyncPendingUpload) {
			t.Errorf("expected sync_state %q, got %q", db.SyncPendingUpload, res.Bookmark.SyncState)
		}
	})

	t.Run("POST restores an archived record", func(t *testing.T) {
		captureURL(t, server, `{"url":"https://example.com/back","title":"Back"}`)
		archiveURL(t, server, "https://example.com/back")

		req := jsonRequest(http.MethodPost, "/api/bookmarks", `{"url":"https://example.com/back"}`)
		w := httptest.NewRecorder()

		server.handleBookmarks(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var res captureResponse
		decodeBody(t, w, &res)
		if !res.Restored {
			t.Error("expected restored to be true")
		}
		if res.Bookmark.Archived {
			t.Error("expected bookmark to be unarchived")
		}
	})

	t.Run("POST invalid URL returns bad request", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/bookmarks", `{"url":"not a url"}`)
		w := httptest.NewRecorder()

		server.handleBookmarks(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("POST missing url returns bad request", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/bookmarks", `{"title":"No URL"}`)
		w := httptest.NewRecorder()

		server.handleBookmarks(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("POST malformed body returns bad request", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/bookmarks", `{"url":`)
		w := httptest.NewRecorder()

		server.handleBookmarks(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("DELETE returns method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/bookmarks", nil)
		w := httptest.NewRecorder()

		server.handleBookmarks(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
		}
	})
}

// TestHandleBookmarksList tests the list side of /api/bookmarks.
func TestHandleBookmarksList(t *testing.T) {
	server, _ := newTestServer(t)
	captureURL(t, server, `{"url":"https://a.example.com","title":"A","tags":["go"]}`)
	captureURL(t, server, `{"url":"https://b.example.com","title":"B"}`)
	archiveURL(t, server, "https://b.example.com")

	list := func(t *testing.T, query string) (int, bookmarkListResponse) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/bookmarks"+query, nil)
		w := httptest.NewRecorder()
		server.handleBookmarks(w, req)
		var res bookmarkListResponse
		if w.Code == http.StatusOK {
			decodeBody(t, w, &res)
		}
		return w.Code, res
	}

	t.Run("GET returns active bookmarks", func(t *testing.T) {
		code, res := list(t, "")
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if len(res.Bookmarks) != 1 {
			t.Fatalf("expected 1 bookmark, got %d", len(res.Bookmarks))
		}
		if res.Bookmarks[0].URL != "https://a.example.com" {
			t.Errorf("expected the active bookmark, got %q", res.Bookmarks[0].URL)
		}
	})

	t.Run("GET with archived=true includes archived", func(t *testing.T) {
		code, res := list(t, "?archived=true")
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if len(res.Bookmarks) != 2 {
			t.Errorf("expected 2 bookmarks, got %d", len(res.Bookmarks))
		}
	})

	t.Run("GET with tag filter", func(t *testing.T) {
		code, res := list(t, "?tag=go")
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if len(res.Bookmarks) != 1 || res.Bookmarks[0].URL != "https://a.example.com" {
			t.Errorf("expected only the tagged bookmark, got %v", res.Bookmarks)
		}
	})

	t.Run("GET with state filter", func(t *testing.T) {
		code, res := list(t, "?archived=true&state=pending_upload")
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if len(res.Bookmarks) != 1 || res.Bookmarks[0].URL != "https://b.example.com" {
			t.Errorf("expected only the archived pending bookmark, got %v", res.Bookmarks)
		}
	})

	t.Run("GET with limit bounds the result", func(t *testing.T) {
		code, res := list(t, "?archived=true&limit=1")
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if len(res.Bookmarks) != 1 {
			t.Errorf("expected 1 bookmark, got %d", len(res.Bookmarks))
		}
	})

	t.Run("GET with unknown state returns bad request", func(t *testing.T) {
		code, _ := list(t, "?state=uploading")
		if code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, code)
		}
	})

	t.Run("GET with invalid limit returns bad request", func(t *testing.T) {
		code, _ := list(t, "?limit=many")
		if code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, code)
		}
	})
}

// TestHandleAmend tests POST /api/bookmarks/amend.
func TestHandleAmend(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("POST replaces the note", func(t *testing.T) {
		captureURL(t, server, `{"url":"https://example.com/amend","title":"Amend Me"}`)

		req := jsonRequest(http.MethodPost, "/api/bookmarks/amend",
			`{"url":"https://example.com/amend","note":"check the appendix"}`)
		w := httptest.NewRecorder()

		server.handleAmend(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}
		var res bookmarkResponse
		decodeBody(t, w, &res)
		if res.Bookmark.Note != "check the appendix" {
			t.Errorf("expected amended note, got %q", res.Bookmark.Note)
		}
		if res.Bookmark.SyncState != string(db.SyncPendingUpload) {
			t.Errorf("expected sync_state %q, got %q", db.SyncPendingUpload, res.Bookmark.SyncState)
		}
	})

	t.Run("POST unknown URL returns not found", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/bookmarks/amend",
			`{"url":"https://example.com/missing","note":"whatever"}`)
		w := httptest.NewRecorder()

		server.handleAmend(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
		var res errorResponse
		decodeBody(t, w, &res)
		if !strings.Contains(res.Error, "not found") {
			t.Errorf("expected not-found error, got %q", res.Error)
		}
	})

	t.Run("POST missing url returns bad request", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/bookmarks/amend", `{"note":"no url"}`)
		w := httptest.NewRecorder()

		server.handleAmend(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("GET returns method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bookmarks/amend", nil)
		w := httptest.NewRecorder()

		server.handleAmend(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
		}
	})
}

// TestHandleArchiveBookmark tests POST /api/bookmarks/archive.
func TestHandleArchiveBookmark(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("POST archives the bookmark", func(t *testing.T) {
		captureURL(t, server, `{"url":"https://example.com/old","title":"Old"}`)

		req := jsonRequest(http.MethodPost, "/api/bookmarks/archive",
			`{"url":"https://example.com/old"}`)
		w := httptest.NewRecorder()

		server.handleArchive(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}
		var res bookmarkResponse
		decodeBody(t, w, &res)
		if !res.Bookmark.Archived {
			t.Error("expected bookmark to be archived")
		}
		if res.Bookmark.SyncState != string(db.SyncPendingUpload) {
			t.Errorf("expected sync_state %q, got %q", db.SyncPendingUpload, res.Bookmark.SyncState)
		}
	})

	t.Run("POST unknown URL returns not found", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/bookmarks/archive",
			`{"url":"https://example.com/missing"}`)
		w := httptest.NewRecorder()

		server.handleArchive(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})

	t.Run("GET returns method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bookmarks/archive", nil)
		w := httptest.NewRecorder()

		server.handleArchive(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
		}
	})
}

// TestHandleStatus tests GET /api/status.
func TestHandleStatus(t *testing.T) {
	server, _ := newTestServer(t)

	status := func(t *testing.T, query string) (int, statusResponse) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/status"+query, nil)
		w := httptest.NewRecorder()
		server.handleStatus(w, req)
		var res statusResponse
		if w.Code == http.StatusOK {
			decodeBody(t, w, &res)
		}
		return w.Code, res
	}

	t.Run("unknown URL reads unsaved", func(t *testing.T) {
		code, res := status(t, "?url=https://nowhere.example.com")
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if res.Status != "unsaved" {
			t.Errorf("expected status 'unsaved', got %q", res.Status)
		}
		if res.Bookmark != nil {
			t.Errorf("expected no bookmark, got %v", res.Bookmark)
		}
	})

	t.Run("fresh capture reads saved_pending_sync", func(t *testing.T) {
		captureURL(t, server, `{"url":"https://example.com/fresh"}`)

		code, res := status(t, "?url=https://example.com/fresh")
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if res.Status != "saved_pending_sync" {
			t.Errorf("expected status 'saved_pending_sync', got %q", res.Status)
		}
		if res.Bookmark == nil {
			t.Error("expected bookmark in response")
		}
	})

	t.Run("synced record reads saved", func(t *testing.T) {
		created := captureURL(t, server, `{"url":"https://example.com/settled"}`)
		if _, err := server.db.MarkSynced(created.Bookmark.LocalID, 42, created.Bookmark.UpdatedAt); err != nil {
			t.Fatalf("failed to mark synced: %v", err)
		}

		code, res := status(t, "?url=https://example.com/settled")
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if res.Status != "saved" {
			t.Errorf("expected status 'saved', got %q", res.Status)
		}
	})

	t.Run("archived URL reads unsaved", func(t *testing.T) {
		captureURL(t, server, `{"url":"https://example.com/gone"}`)
		archiveURL(t, server, "https://example.com/gone")

		code, res := status(t, "?url=https://example.com/gone")
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if res.Status != "unsaved" {
			t.Errorf("expected status 'unsaved', got %q", res.Status)
		}
		if res.Bookmark == nil || !res.Bookmark.Archived {
			t.Error("expected the archived record alongside the unsaved status")
		}
	})

	t.Run("missing url returns bad request", func(t *testing.T) {
		code, _ := status(t, "")
		if code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, code)
		}
	})

	t.Run("invalid url returns bad request", func(t *testing.T) {
		code, _ := status(t, "?url=no-scheme")
		if code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, code)
		}
	})
}

// TestHandleSync tests /api/sync.
func TestHandleSync(t *testing.T) {
	t.Run("POST wakes the coordinator", func(t *testing.T) {
		server, syncer := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("expected status %d, got %d", http.StatusAccepted, w.Code)
		}
		if syncer.calls != 1 {
			t.Errorf("expected 1 SyncNow call, got %d", syncer.calls)
		}
		var res syncStatusResponse
		decodeBody(t, w, &res)
		if res.State != string(sync.StateIdle) {
			t.Errorf("expected state %q, got %q", sync.StateIdle, res.State)
		}
	})

	t.Run("GET reports the last cycle", func(t *testing.T) {
		server, syncer := newTestServer(t)
		started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		syncer.status = sync.Status{
			State: sync.StateIdle,
			LastResult: &sync.Result{
				Outcome:    sync.OutcomeSuccess,
				Message:    "pushed 2, pulled 1, skipped 0, failures 0",
				StartedAt:  started,
				FinishedAt: started.Add(2 * time.Second),
				Pushed:     2,
				Pulled:     1,
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/sync", nil)
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var res syncStatusResponse
		decodeBody(t, w, &res)
		if res.LastResult == nil {
			t.Fatal("expected last_result in response")
		}
		if res.LastResult.Outcome != string(sync.OutcomeSuccess) {
			t.Errorf("expected outcome %q, got %q", sync.OutcomeSuccess, res.LastResult.Outcome)
		}
		if res.LastResult.Pushed != 2 || res.LastResult.Pulled != 1 {
			t.Errorf("expected pushed=2 pulled=1, got pushed=%d pulled=%d",
				res.LastResult.Pushed, res.LastResult.Pulled)
		}
		if !res.LastResult.StartedAt.Equal(started) {
			t.Errorf("expected started_at %v, got %v", started, res.LastResult.StartedAt)
		}
	})

	t.Run("GET before any cycle omits last_result and cursor", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/sync", nil)
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var res syncStatusResponse
		decodeBody(t, w, &res)
		if res.LastResult != nil {
			t.Errorf("expected no last_result, got %v", res.LastResult)
		}
		if res.LastSuccessfulSyncAt != nil {
			t.Errorf("expected no cursor, got %v", res.LastSuccessfulSyncAt)
		}
	})

	t.Run("GET includes the stored cursor", func(t *testing.T) {
		server, _ := newTestServer(t)
		mark := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		if err := server.db.SetLastSuccessfulSyncAt(mark); err != nil {
			t.Fatalf("failed to set cursor: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/sync", nil)
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		var res syncStatusResponse
		decodeBody(t, w, &res)
		if res.LastSuccessfulSyncAt == nil || !res.LastSuccessfulSyncAt.Equal(mark) {
			t.Errorf("expected cursor %v, got %v", mark, res.LastSuccessfulSyncAt)
		}
	})

	t.Run("DELETE returns method not allowed", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/sync", nil)
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
		}
	})
}

// TestHandleTags tests GET /api/tags.
func TestHandleTags(t *testing.T) {
	t.Run("GET returns tags alphabetically", func(t *testing.T) {
		server, _ := newTestServer(t)
		captureURL(t, server, `{"url":"https://example.com/tagged","tags":["reading","go"]}`)

		req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
		w := httptest.NewRecorder()

		server.handleTags(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var res tagListResponse
		decodeBody(t, w, &res)
		if len(res.Tags) != 2 {
			t.Fatalf("expected 2 tags, got %d", len(res.Tags))
		}
		if res.Tags[0].Name != "go" || res.Tags[1].Name != "reading" {
			t.Errorf("expected [go reading], got %v", res.Tags)
		}
		if res.Tags[0].Color != db.DefaultTagColor {
			t.Errorf("expected default color %q, got %q", db.DefaultTagColor, res.Tags[0].Color)
		}
	})

	t.Run("GET with empty store returns empty list", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
		w := httptest.NewRecorder()

		server.handleTags(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var res tagListResponse
		decodeBody(t, w, &res)
		if len(res.Tags) != 0 {
			t.Errorf("expected no tags, got %v", res.Tags)
		}
	})

	t.Run("POST returns method not allowed", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/tags", nil)
		w := httptest.NewRecorder()

		server.handleTags(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
		}
	})
}

// TestHandleHealthz tests the liveness probe.
func TestHandleHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("GET returns ok", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()

		server.handleHealthz(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if !strings.Contains(w.Body.String(), "ok") {
			t.Errorf("expected body to contain 'ok', got %q", w.Body.String())
		}
	})

	t.Run("POST returns method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
		w := httptest.NewRecorder()

		server.handleHealthz(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
		}
	})
}
