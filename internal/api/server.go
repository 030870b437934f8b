package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chalimba/papertree/internal/config"
	"github.com/chalimba/papertree/internal/pipeline"
)

// Server is the HTTP API server for papertree.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.PapertreeAPIKey, s.log))

		r.Post("/api/papers", s.handleUpload)
		r.Post("/api/papers/batch", s.handleBatchUpload)
		r.Get("/api/papers", s.handleListPapers)
		r.Get("/api/papers/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/papers/{paperID}/tree", s.handleGetTree)
		r.Post("/api/papers/{paperID}/renumber", s.handleRenumber)
		r.Delete("/api/papers/{paperID}", s.handleDeletePaper)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
