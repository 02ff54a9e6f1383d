package web

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// handleSync handles sync coordinator requests: POST asks for a sync as soon
// as possible, GET reports where the coordinator stands.
//
// POST never waits for the cycle. It returns 202 with the coordinator's
// current status; callers poll GET to see the result.
func (ws *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		ws.syncer.SyncNow()
		writeJSON(w, http.StatusAccepted, ws.syncStatus())
	case http.MethodGet:
		writeJSON(w, http.StatusOK, ws.syncStatus())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// syncStatus joins the coordinator's view with the stored cursor.
func (ws *Server) syncStatus() syncStatusResponse {
	resp := toSyncStatusResponse(ws.syncer.Status())
	cursor, err := ws.db.GetSyncCursor()
	if err != nil {
		log.Error().Err(err).Msg("failed to read sync cursor")
		return resp
	}
	resp.LastSuccessfulSyncAt = cursor.LastSuccessfulSyncAt
	return resp
}
