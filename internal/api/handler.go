// internal/api/handler.go
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"commit-watcher/internal/poller"
)

// StatusProvider exposes the poller's read-only state.
type StatusProvider interface {
	LastSeenID() int64
	Keywords() []string
	Stats() poller.Stats
}

// Handler is the container for API dependencies.
type Handler struct {
	status    StatusProvider
	sourceURL string
	logger    *slog.Logger
}

// StatusResponse is the body of GET /v1/status.
type StatusResponse struct {
	SourceURL  string       `json:"source_url"`
	LastSeenID int64        `json:"last_seen_id"`
	Keywords   []string     `json:"keywords"`
	Filtered   bool         `json:"filtered"`
	Stats      poller.Stats `json:"stats"`
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(status StatusProvider, sourceURL string, logger *slog.Logger) http.Handler {
	h := &Handler{
		status:    status,
		sourceURL: sourceURL,
		logger:    logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", h.getStatus)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus reports the tracker baseline and poll counters.
// GET /v1/status
func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	keywords := h.status.Keywords()
	if keywords == nil {
		keywords = []string{}
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{
		SourceURL:  h.sourceURL,
		LastSeenID: h.status.LastSeenID(),
		Keywords:   keywords,
		Filtered:   len(keywords) > 0,
		Stats:      h.status.Stats(),
	})
}

// requestLogger logs each request through the service logger instead of chi's default one.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("Handled status request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start).String(),
		)
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
