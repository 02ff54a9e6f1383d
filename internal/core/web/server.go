// Package web serves the local HTTP API that capture surfaces (browser
// extension, CLI, scripts) talk to. Every endpoint answers from the local
// store; nothing here waits on the bookmark service.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Yigal/bookmarkable/internal/core/db"
	"github.com/Yigal/bookmarkable/internal/core/sync"
)

// Syncer is the slice of the sync coordinator the API needs: waking it up
// and reporting where it stands.
type Syncer interface {
	SyncNow()
	Status() sync.Status
}

// Server handles HTTP requests for the local API.
type Server struct {
	db     *db.DB
	syncer Syncer
}

// newServer creates a new Server instance.
func newServer(database *db.DB, syncer Syncer) *Server {
	return &Server{db: database, syncer: syncer}
}

// Handler builds the full API route table, including /healthz and /metrics.
func Handler(database *db.DB, syncer Syncer) http.Handler {
	ws := newServer(database, syncer)
	mux := http.NewServeMux()
	ws.registerRoutes(mux)
	return mux
}

// StartServer runs the local API on addr until ctx is canceled, then shuts
// down gracefully, letting in-flight requests finish.
func StartServer(ctx context.Context, addr string, database *db.DB, syncer Syncer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(database, syncer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("local API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("failed to serve local API: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		// The parent context is already canceled; give in-flight requests
		// their own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down local API: %w", err)
		}
		log.Info().Msg("local API stopped")
		return nil
	}
}

// registerRoutes sets up the HTTP route handlers.
func (ws *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/bookmarks", ws.handleBookmarks)
	mux.HandleFunc("/api/bookmarks/amend", ws.handleAmend)
	mux.HandleFunc("/api/bookmarks/archive", ws.handleArchive)
	mux.HandleFunc("/api/status", ws.handleStatus)
	mux.HandleFunc("/api/sync", ws.handleSync)
	mux.HandleFunc("/api/tags", ws.handleTags)
	mux.HandleFunc("/healthz", ws.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
}
