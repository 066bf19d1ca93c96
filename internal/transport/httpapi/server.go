package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"newspulse/internal/cache"
	"newspulse/internal/domain"
	"newspulse/internal/hub"
	"newspulse/internal/ports"
	"newspulse/internal/usecase"
)

// Server exposes the read endpoints, the manual-refresh trigger, and the
// live-update stream over the core components.
type Server struct {
	snapshots *cache.SnapshotCache
	hub       *hub.Hub
	scheduler *usecase.Scheduler
	enricher  ports.Enricher
	logger    *slog.Logger
}

// NewServer wires the transport to the core.
func NewServer(snapshots *cache.SnapshotCache, h *hub.Hub, scheduler *usecase.Scheduler, enricher ports.Enricher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		snapshots: snapshots,
		hub:       h,
		scheduler: scheduler,
		enricher:  enricher,
		logger:    logger,
	}
}

// Routes returns the HTTP handler for all API endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/news", s.handleNews)
	mux.HandleFunc("GET /api/trending", s.handleTrending)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	return mux
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshots.Current()
	articles := snap.Articles
	if articles == nil {
		articles = []domain.ProcessedArticle{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   articles,
		"total":  len(articles),
	})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshots.Current()
	trending := snap.Trending
	if trending == nil {
		trending = []domain.TrendingTopic{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   trending,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	online := s.enricher != nil && s.enricher.IsAvailable(r.Context())
	health := s.scheduler.Health()
	snap := s.snapshots.Current()

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":                 "healthy",
		"timestamp":              time.Now().UTC(),
		"enricher_online":        online,
		"subscriber_connections": s.hub.Count(),
		"cached_articles":        len(snap.Articles),
		"snapshot_version":       snap.Version,
		"cycles":                 health.Cycles,
		"last_success":           health.LastSuccess,
		"last_error":             health.LastError,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.scheduler.TriggerNow()
	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "success",
		"message": "refresh scheduled",
	})
}

// handleStream serves the live-update stream as server-sent events. The
// request goroutine blocks until the client disconnects; broadcasts arrive
// via the hub on the scheduler goroutine.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	conn := newStreamConn(w, flusher)
	s.hub.Register(conn)

	<-r.Context().Done()

	// Mark the conn closed before the handler returns so an in-flight
	// broadcast cannot write to a dead ResponseWriter.
	conn.close()
	s.hub.Unregister(conn)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}
