// Package api exposes the HTTP entry points of the notifier: the event
// envelope endpoint (email fan-out), the relay endpoint (caller-supplied
// recipients, SMS relay), and the dispatch audit log.
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/shaharia-lab/matchday-notifier/internal/pipeline"
	"github.com/shaharia-lab/matchday-notifier/internal/storage"
)

// maxBodyBytes bounds inbound request bodies.
const maxBodyBytes = 1 << 20

// Server holds all dependencies for the REST API handlers.
type Server struct {
	eventsPipeline *pipeline.Pipeline
	relayPipeline  *pipeline.Pipeline
	store          storage.NotificationStore // nil when the audit log is disabled
	logger         *slog.Logger
}

// New creates a new API Server backed by the two pipeline bindings.
func New(eventsPipeline, relayPipeline *pipeline.Pipeline, store storage.NotificationStore, logger *slog.Logger) *Server {
	return &Server{
		eventsPipeline: eventsPipeline,
		relayPipeline:  relayPipeline,
		store:          store,
		logger:         logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	// Entry A: event envelopes, directory-resolved recipients, email.
	r.Post("/events", s.handleEvents)

	// Entry B: caller-supplied recipients relayed downstream. Browser
	// clients post here directly, so the route carries CORS headers.
	r.Route("/relay", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))
		r.Options("/", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Post("/", s.handleRelay)
	})

	// Dispatch audit log.
	r.Get("/notifications", s.handleListNotifications)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.runPipeline(w, r, s.eventsPipeline)
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	s.runPipeline(w, r, s.relayPipeline)
}

func (s *Server) runPipeline(w http.ResponseWriter, r *http.Request, p *pipeline.Pipeline) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	res := p.Run(r.Context(), body)
	writeJSON(w, res.StatusCode, res.Body)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"notifications": []storage.NotificationLogEntry{}})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	entries, err := s.store.ListNotifications(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing notifications", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if entries == nil {
		entries = []storage.NotificationLogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": entries})
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
