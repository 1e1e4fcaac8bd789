// Package ops serves health, readiness, metrics and session inspection over HTTP.
package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/voice-journal/internal/display"
	"github.com/Proton-105/voice-journal/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Sessions exposes the live conversations. conversation.Registry satisfies it
// through RegistrySessions.
type Sessions interface {
	IDs() []string
	Snapshot(sessionID string) (display.Snapshot, bool)
}

// Readiness reports per-component status. health.Checker satisfies it.
type Readiness interface {
	Ready(ctx context.Context) (map[string]string, bool)
}

// Handler holds the ops endpoints.
type Handler struct {
	sessions Sessions
	ready    Readiness
	log      *slog.Logger
}

// NewRouter builds the ops router. ready and sessions may be nil.
func NewRouter(sessions Sessions, ready Readiness, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{sessions: sessions, ready: ready, log: log}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(logger.Middleware)

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.ListSessions)
		r.Get("/{id}", h.GetSession)
	})

	return r
}

// Health always reports the process as alive.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready runs the readiness checks and answers 503 when any fails.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	results, ok := h.ready.Ready(ctx)
	if !ok {
		h.log.WarnContext(ctx, "readiness check failed",
			slog.Any("checks", results),
			slog.String("correlation_id", logger.CorrelationIDFromContext(ctx)),
		)
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "checks": results})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "checks": results})
}

// ListSessions returns the ids of live sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, _ *http.Request) {
	ids := []string{}
	if h.sessions != nil {
		ids = h.sessions.IDs()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": ids, "count": len(ids)})
}

// GetSession returns the snapshot of one live session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.sessions == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	snap, ok := h.sessions.Snapshot(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
