package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terra-clan/hero-quest/internal/config"
	"github.com/terra-clan/hero-quest/internal/game"
	"github.com/terra-clan/hero-quest/internal/metrics"
	"github.com/terra-clan/hero-quest/internal/services"
)

// Server represents the HTTP API server
type Server struct {
	config   config.ServerConfig
	router   *chi.Mux
	game     *game.Manager
	registry *services.Registry
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// NewServer creates a new API server.
// The /metrics route is mounted only when gatherer is not nil.
func NewServer(
	cfg config.ServerConfig,
	manager *game.Manager,
	registry *services.Registry,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) *Server {
	if registry == nil {
		registry = services.NewRegistry()
	}
	s := &Server{
		config:   cfg,
		game:     manager,
		registry: registry,
		metrics:  m,
		gatherer: gatherer,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Static content tables
		r.Route("/content", func(r chi.Router) {
			r.Use(middleware.Timeout(timeout))
			r.Get("/archetypes", s.handleListArchetypes)
			r.Get("/questions", s.handleListQuestions)
			r.Get("/missions", s.handleListMissions)
			r.Get("/badges", s.handleListBadges)
			r.Get("/assessment", s.handleGetAssessment)
			r.Get("/story/{nodeID}", s.handleGetStoryNode)
		})

		r.Route("/players", func(r chi.Router) {
			r.With(middleware.Timeout(timeout)).Post("/", s.handleCreatePlayer)

			r.Route("/{playerID}", func(r chi.Router) {
				r.Use(s.playerContext)

				// Long-lived; no request timeout
				r.Get("/story/ws", s.handleStoryWS)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Timeout(timeout))

					r.Get("/", s.handleGetProfile)
					r.Delete("/", s.handleResetPlayer)
					r.Post("/quiz", s.handleCompleteQuiz)
					r.Get("/missions", s.handleListPlayerMissions)
					r.Post("/missions/{missionID}/complete", s.handleCompleteMission)
					r.Get("/badges", s.handleListPlayerBadges)
					r.Post("/assessment", s.handleCompleteAssessment)
					r.Post("/progress", s.handleProgressStory)

					r.Route("/story", func(r chi.Router) {
						r.Get("/", s.handleGetStory)
						r.Post("/open", s.handleOpenStory)
						r.Post("/reveal", s.handleRevealStory)
						r.Post("/choices/{choiceID}", s.handleChooseStory)
						r.Post("/skip", s.handleSkipStory)
						r.Post("/close", s.handleCloseStory)
					})
				})
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog and records request metrics
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			duration := time.Since(start)
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			s.metrics.ObserveRequest(r.Method, route, ww.Status(), duration)

			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", duration.Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
