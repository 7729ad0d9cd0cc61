// Package server exposes the deposit engine over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/tbxark/depositagent/agent"
)

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	engine   *agent.Engine
	origins  []string
	pinger   Pinger
	gatherer prometheus.Gatherer
	router   chi.Router
}

type Option func(*Server)

// WithCORSOrigins restricts the allowed origins. The default allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithHealthCheck makes /api/health ping p.
func WithHealthCheck(p Pinger) Option {
	return func(s *Server) { s.pinger = p }
}

// WithGatherer serves g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func New(engine *agent.Engine, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/start", s.handleStart)
		r.Post("/process", s.handleProcess)
		r.Post("/complete", s.handleComplete)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	// Credentials cannot be combined with a wildcard origin.
	allowAll := len(s.origins) == 1 && s.origins[0] == "*"
	return cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: !allowAll,
	}).Handler(s.router)
}
