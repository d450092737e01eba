package adapthttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"

	"streaks/internal/app"
)

// OIDCConfig carries the optional SSO setup for the admin surface.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	reads   *app.ReadService
	stats   *app.StatsService
	admin   *app.AdminService
	authSvc *app.AuthService
	limiter app.RateLimiter
	logger  *slog.Logger

	oidcConfig  OIDCConfig
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(rs *app.ReadService, ss *app.StatsService, as *app.AdminService, auth *app.AuthService, limiter app.RateLimiter, oidcConfig OIDCConfig, logger *slog.Logger) *Server {
	return &Server{
		reads:      rs,
		stats:      ss,
		admin:      as,
		authSvc:    auth,
		limiter:    limiter,
		oidcConfig: oidcConfig,
		logger:     logger,
	}
}

// WithoutAuth disables admin-session checks. Test use only.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})

		r.With(s.rateLimit).Post("/reads", s.handleRecordRead)
		r.Get("/stats/user", s.handleUserStats)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/config", s.handleAuthConfig)
			r.Get("/sso/login", s.handleSSOLogin)
			r.Get("/sso/callback", s.handleSSOCallback)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/stats", s.handleAdminSummary)
			r.Get("/top-readers", s.handleTopReaders)
			r.Get("/history", s.handleHistory)
		})
	})

	return r
}
