package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Yigal/bookmarkable/internal/core/db"
)

// maxRequestBody caps JSON request bodies. Capture payloads are small;
// anything bigger is a mistake.
const maxRequestBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON renders v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError renders a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// readJSON decodes the request body into dst, rejecting unknown fields and
// oversized bodies.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeStoreError maps store errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case db.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case db.IsDuplicate(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("store operation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireMethod checks the request uses the expected HTTP method and writes
// a 405 response if not. Returns true when the method matches.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// handleHealthz is a liveness probe.
func (ws *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
