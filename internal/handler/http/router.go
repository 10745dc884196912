package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Leapblog/backend/internal/service"
	"github.com/Leapblog/backend/pkg/health"
	"github.com/Leapblog/backend/pkg/middleware"
)

// RouterConfig holds the dependencies and settings for route registration.
type RouterConfig struct {
	AuthService   *service.AuthService
	UserService   *service.UserService
	BlogService   *service.BlogService
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
	PprofCIDRs    []string
}

// NewRouter creates a chi router with all backend routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Tracing("backend"))
	r.Use(middleware.PrometheusMetrics("backend"))

	// Operational endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger)
	userHandler := NewUserHandler(cfg.UserService, cfg.Logger)
	postHandler := NewPostHandler(cfg.BlogService, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public auth endpoints.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/refresh", authHandler.Refresh)
		})

		// Authenticated but not necessarily verified: a fresh account must be
		// able to verify itself, ask for a new code, and log out.
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(cfg.AuthService))

			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/auth/verify-otp", authHandler.VerifyOTP)
			r.Post("/auth/resend-otp", authHandler.ResendOTP)
		})

		// Public read endpoints. Bearer tokens are honored when present so
		// the Liked flag can be populated.
		r.Group(func(r chi.Router) {
			r.Use(OptionalAuth(cfg.AuthService))

			r.Get("/posts", postHandler.List)
			r.Get("/posts/{id}", postHandler.Get)
		})

		// Comment reads are identical for every caller and safe to cache briefly.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(30))

			r.Get("/posts/{id}/comments", postHandler.ListComments)
			r.Get("/comments/{id}", postHandler.GetComment)
		})

		// Authenticated and verified endpoints.
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(cfg.AuthService))
			r.Use(RequireVerified)

			r.Get("/users/me", userHandler.GetProfile)
			r.Put("/users/me", userHandler.UpdateProfile)

			r.Post("/posts", postHandler.Create)
			r.Put("/posts/{id}", postHandler.Update)
			r.Delete("/posts/{id}", postHandler.Delete)

			r.Post("/posts/{id}/comments", postHandler.CreateComment)
			r.Delete("/comments/{id}", postHandler.DeleteComment)

			r.Post("/posts/{id}/like", postHandler.Like)
			r.Delete("/posts/{id}/like", postHandler.Unlike)
		})
	})

	return r
}
