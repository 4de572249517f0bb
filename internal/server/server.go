// Package server provides the HTTP server and routing for item-sentinel.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/database"
	"github.com/aristath/itemsentinel/internal/events"
	herostatshandlers "github.com/aristath/itemsentinel/internal/modules/herostats/handlers"
	markethandlers "github.com/aristath/itemsentinel/internal/modules/market/handlers"
	portfoliohandlers "github.com/aristath/itemsentinel/internal/modules/portfolio/handlers"
	scoringhandlers "github.com/aristath/itemsentinel/internal/modules/scoring/handlers"
	trendhandlers "github.com/aristath/itemsentinel/internal/modules/trend/handlers"
)

// JobLister reports the registered scheduler jobs
type JobLister interface {
	Jobs() []string
}

// Config holds server configuration. Nil module handlers are not mounted.
type Config struct {
	Log       zerolog.Logger
	Databases map[string]*database.DB
	Bus       *events.Bus
	Jobs      JobLister
	DataDir   string
	Port      int
	DevMode   bool

	Scoring   *scoringhandlers.Handlers
	Trend     *trendhandlers.Handlers
	Portfolio *portfoliohandlers.Handler
	Market    *markethandlers.Handler
	HeroStats *herostatshandlers.Handler
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Databases, cfg.Bus, cfg.Jobs, cfg.DataDir, cfg.Log)
	if cfg.Bus != nil {
		s.eventsStream = NewEventsStreamHandler(cfg.Bus, cfg.Log)
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.DevMode)

	// No WriteTimeout: websocket streams outlive any single deadline.
	// Regular requests are bounded by the Timeout middleware.
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// setupMiddleware installs middleware shared by every route
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(devMode bool) {
	// The event stream sits outside the timeout and compression group
	if s.eventsStream != nil {
		s.router.Get("/api/events/ws", s.eventsStream.ServeHTTP)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		if !devMode {
			r.Use(middleware.Compress(5))
		}

		r.Get("/health", s.handleHealth)

		r.Route("/api", func(r chi.Router) {
			r.Get("/system/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/system/databases", s.systemHandlers.HandleDatabaseStats)

			if s.cfg.Scoring != nil {
				s.cfg.Scoring.RegisterRoutes(r)
			}
			if s.cfg.Trend != nil {
				s.cfg.Trend.RegisterRoutes(r)
			}
			if s.cfg.Portfolio != nil {
				s.cfg.Portfolio.RegisterRoutes(r)
			}
			if s.cfg.Market != nil {
				s.cfg.Market.RegisterRoutes(r)
			}
			if s.cfg.HeroStats != nil {
				s.cfg.HeroStats.RegisterRoutes(r)
			}
		})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs every HTTP request
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
