package server

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sqzls/waterwatch/pkg/models"
)

// CardPath is where the frontend card asset is served
const CardPath = "/waterwatch/water-info-card.js"

//go:embed water-info-card.js
var cardJS []byte

var (
	cardMu         sync.Mutex
	cardRegistered bool
)

// RegisterCard mounts the frontend card asset on the router. Registration
// happens at most once per process; repeat calls return false and leave the
// router untouched.
func RegisterCard(r chi.Router) bool {
	cardMu.Lock()
	defer cardMu.Unlock()

	if cardRegistered {
		return false
	}

	r.Get(CardPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Write(cardJS)
	})

	cardRegistered = true
	return true
}

// SummarySource provides the latest usage summary, nil before the first
// successful refresh
type SummarySource interface {
	Data() *models.UsageSummary
}

// Server exposes the latest summary over HTTP
type Server struct {
	router chi.Router
	source SummarySource
	log    zerolog.Logger
}

// New creates the status server
func New(source SummarySource, log zerolog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		source: source,
		log:    log,
	}

	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/summary", s.handleSummary)
	RegisterCard(s.router)

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	summary := s.source.Data()
	if summary == nil {
		http.Error(w, `{"error":"no data"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		s.log.Error().Err(err).Msg("encoding summary response")
	}
}
