package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/hnsum/internal/config"
	"github.com/dgallion1/hnsum/internal/inference"
	"github.com/dgallion1/hnsum/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server for hnsum.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *inference.LLMStats
	limiter      *RateLimiter
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(orch *pipeline.Orchestrator, stats *inference.LLMStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		stats:        stats,
		limiter:      NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
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
	r.Use(cors.Handler(corsOptions(s.cfg.CORSAllowedOrigin)))

	// Operational endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/api/stats/llm", s.handleLLMStats)
	r.Handle("/metrics", promhttp.Handler())

	// Pipeline entry points.
	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware)

		r.Get("/", s.handleStreamSummary)
		r.Get("/summary", s.handleSummary)
		r.Get("/comments", s.handleComments)
		r.Get("/image", s.handleImage)
	})

	s.router = r
}

// corsOptions allows every origin without credentials when origin is
// empty, otherwise exactly origin with credentials.
func corsOptions(origin string) cors.Options {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         600,
	}
	if origin != "" {
		opts.AllowedOrigins = []string{origin}
		opts.AllowCredentials = true
	}
	return opts
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
