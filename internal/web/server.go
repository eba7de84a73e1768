// Package web provides the HTTP server and handlers for the people table.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/usertable/internal/config"
	"github.com/JonMunkholm/usertable/internal/core"
	"github.com/JonMunkholm/usertable/internal/metrics"
	"github.com/JonMunkholm/usertable/internal/session"
	appmw "github.com/JonMunkholm/usertable/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the people table.
type Server struct {
	cfg      *config.Config
	sessions *session.Registry
	metrics  *metrics.Metrics
	limiter  *core.FetchLimiter
	base     string
	rate     *rateLimiter
	router   *chi.Mux
	server   *http.Server
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Config   *config.Config
	Sessions *session.Registry
	Metrics  *metrics.Metrics
	Limiter  *core.FetchLimiter
}

// NewServer creates a Server with its middleware and routes configured.
func NewServer(d Deps) *Server {
	s := &Server{
		cfg:      d.Config,
		sessions: d.Sessions,
		metrics:  d.Metrics,
		limiter:  d.Limiter,
		base:     d.Config.Server.BasePath,
		router:   chi.NewRouter(),
	}
	if s.cfg.Rate.Enabled {
		s.rate = newRateLimiter(s.cfg.Rate.RequestsPerMinute, rateWindow)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger(s.base+"/static/", s.base+"/view/resize/update"))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.securityHeaders)
	if s.rate != nil {
		s.router.Use(s.rate.middleware)
	}
}

// setupRoutes mounts the application under the configured base path.
func (s *Server) setupRoutes() {
	if s.base == "" {
		s.routes(s.router)
		return
	}
	sub := chi.NewRouter()
	s.routes(sub)
	s.router.Mount(s.base, sub)
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.base+"/", http.StatusFound)
	})
}

func (s *Server) routes(r chi.Router) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix(s.base+"/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled && s.metrics != nil {
		r.Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		// Page
		r.Get("/", s.handlePage)

		// View events, answered with the re-rendered fragment
		r.Route("/view", func(r chi.Router) {
			r.Get("/", s.handleView)
			r.Post("/filter", s.handleFilter)
			r.Post("/sort/{field}", s.handleSort)
			r.Post("/page/{page}", s.handlePageNav)
			r.Post("/select/{id}", s.handleSelect)
			r.Post("/dismiss", s.handleDismiss)
			r.Post("/reload", s.handleReload)

			// Column resize, answered with JSON
			r.Post("/resize/begin", s.handleResizeBegin)
			r.Post("/resize/update", s.handleResizeUpdate)
			r.Post("/resize/end", s.handleResizeEnd)
		})

		// API routes
		r.Route("/api", func(r chi.Router) {
			r.Use(appmw.APIKeyAuth(s.cfg.Security.RequireAPIKey, s.cfg.Security.APIKeys))
			r.Get("/view", s.handleAPIView)
			r.Get("/export", s.handleExport)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr(), "base_path", s.base)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rate != nil {
		s.rate.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Avatars are hot-linked from the upstream; column widths are
		// inline style attributes.
		if s.cfg.Security.EnableCSP {
			h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; connect-src 'self'")
		}

		next.ServeHTTP(w, r)
	})
}
