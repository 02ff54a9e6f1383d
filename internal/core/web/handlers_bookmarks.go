package web

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Yigal/bookmarkable/internal/core"
	"github.com/Yigal/bookmarkable/internal/core/db"
)

// handleBookmarks handles bookmark collection requests: POST captures a URL,
// GET lists stored bookmarks.
func (ws *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		ws.captureBookmark(w, r)
	case http.MethodGet:
		ws.listBookmarks(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type captureRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Note        string   `json:"note"`
	ImageURL    string   `json:"image_url"`
	Tags        []string `json:"tags"`
}

// captureBookmark saves the posted URL into the local store. Re-posting a
// saved URL is not an error; the response says whether the record was
// created, amended, or restored.
func (ws *Server) captureBookmark(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	res, err := core.Capture(ws.db, core.CaptureInput{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Note:        req.Note,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, captureResponse{
		Bookmark: toBookmarkView(res.Bookmark),
		Created:  res.Created,
		Amended:  res.Amended,
		Restored: res.Restored,
	})
}

// listBookmarks returns stored bookmarks, newest first. Query parameters:
// tag, state, archived=true, limit.
func (ws *Server) listBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := db.ListOptions{Tag: q.Get("tag")}
	if state := q.Get("state"); state != "" {
		s := db.SyncState(state)
		if !s.Valid() {
			writeError(w, http.StatusBadRequest, "unknown sync state "+strconv.Quote(state))
			return
		}
		opts.State = s
	}
	if q.Get("archived") == "true" {
		opts.IncludeArchived = true
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = n
	}

	bookmarks, err := ws.db.ListBookmarks(opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookmarks")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]*bookmarkView, 0, len(bookmarks))
	for i := range bookmarks {
		views = append(views, toBookmarkView(&bookmarks[i]))
	}
	writeJSON(w, http.StatusOK, bookmarkListResponse{Bookmarks: views})
}

type amendRequest struct {
	URL  string `json:"url"`
	Note string `json:"note"`
}

// handleAmend replaces the note on an existing bookmark.
func (ws *Server) handleAmend(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req amendRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	b, err := core.AmendNote(ws.db, req.URL, req.Note)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarkResponse{Bookmark: toBookmarkView(b)})
}

type archiveRequest struct {
	URL string `json:"url"`
}

// handleArchive soft-deletes a bookmark. The record survives so the change
// still propagates on the next sync; the URL reads as unsaved afterwards.
func (ws *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req archiveRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	b, err := core.Archive(ws.db, req.URL)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarkResponse{Bookmark: toBookmarkView(b)})
}

// handleStatus reports the save state of a URL without modifying anything.
func (ws *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	status, b, err := core.StatusFor(ws.db, rawURL)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: string(status), Bookmark: toBookmarkView(b)})
}

// handleTags lists every known tag.
func (ws *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	tags, err := ws.db.ListTags()
	if err != nil {
		log.Error().Err(err).Msg("failed to list tags")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]tagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, tagView{Name: tag.Name, Color: tag.Color})
	}
	writeJSON(w, http.StatusOK, tagListResponse{Tags: views})
}
