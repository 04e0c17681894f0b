// Package router assembles the chi routing tree: public resolution endpoints,
// prometheus metrics, and a JWT-gated admin group.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glowdesk/voice-concierge/internal/http/handlers"
	httpmiddleware "github.com/glowdesk/voice-concierge/internal/http/middleware"
	"github.com/glowdesk/voice-concierge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Concierge          *handlers.ConciergeHandler
	AdminCatalog       *handlers.AdminCatalogHandler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// New creates a new chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitRPS > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Concierge != nil {
			public.Route("/v1", func(v1 chi.Router) {
				v1.Post("/resolve", cfg.Concierge.Resolve)
				v1.Post("/datetime/parse", cfg.Concierge.ParseDateTime)
				v1.Post("/availability", cfg.Concierge.Availability)
			})
		}
	})

	if cfg.AdminCatalog != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Route("/catalog", func(catalog chi.Router) {
				catalog.Get("/services", cfg.AdminCatalog.ListServices)
				catalog.Get("/staff", cfg.AdminCatalog.ListStaff)
				catalog.Get("/locations", cfg.AdminCatalog.ListLocations)
			})
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
