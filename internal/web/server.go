// Package web provides the HTTP server and handlers for the data processor.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vincentarsontaneli/data-processor-app/internal/config"
	"github.com/vincentarsontaneli/data-processor-app/internal/core"
	mw "github.com/vincentarsontaneli/data-processor-app/internal/web/middleware"
)

// Server is the HTTP server for the data processor.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limits  []*ipRateLimiter
	started time.Time
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
		started: time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.rateLimit(s.cfg.Rate.RequestsPerMinute))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	processing := func(r chi.Router) {
		if s.cfg.Rate.Enabled {
			r.Use(s.rateLimit(s.cfg.Rate.ProcessLimit))
		}
	}

	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.Group(func(r chi.Router) {
		processing(r)
		r.Post("/preview", s.handlePreview)
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(mw.APIKeyAuth(&s.cfg.Security))
			r.Get("/types", s.handleTypes)
			r.Group(func(r chi.Router) {
				processing(r)
				r.Post("/process", s.handleProcess)
			})
		})
	})
}

// rateLimit builds a per-IP limiter and registers it for shutdown.
func (s *Server) rateLimit(perMinute int) func(http.Handler) http.Handler {
	rl := newIPRateLimiter(perMinute)
	s.limits = append(s.limits, rl)
	return rl.middleware
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, then waits for in-flight runs.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limits {
		rl.Stop()
	}
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.service.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// Inline styles only; the UI ships no scripts.
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'none'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
