package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glowdesk/voice-concierge/internal/api/router"
	"github.com/glowdesk/voice-concierge/internal/catalog"
	"github.com/glowdesk/voice-concierge/internal/concierge"
	appconfig "github.com/glowdesk/voice-concierge/internal/config"
	"github.com/glowdesk/voice-concierge/internal/http/handlers"
	"github.com/glowdesk/voice-concierge/internal/observability/metrics"
	"github.com/glowdesk/voice-concierge/internal/resolve"
	"github.com/glowdesk/voice-concierge/internal/timeparse"
	"github.com/glowdesk/voice-concierge/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting voice-concierge API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	platform := catalog.NewClient(cfg.PlatformBaseURL, cfg.PlatformAPIKey, cfg.PlatformBusinessID, logger)
	parser := timeparse.NewParser(nil, cfg.BusinessHoursOpen, cfg.BusinessHoursClose)

	registry := prometheus.NewRegistry()
	conciergeMetrics := metrics.NewConciergeMetrics(registry)

	svc := concierge.NewService(platform, parser, logger, conciergeMetrics, concierge.Options{
		Resolve: resolve.Options{
			Threshold:       cfg.ResolveScoreThreshold,
			AmbiguityWindow: cfg.ResolveAmbiguityWindow,
		},
		Timezone:        cfg.DefaultTimezone,
		MaxDates:        cfg.MaxDates,
		MaxSlotsPerDate: cfg.MaxSlotsPerDate,
		FetchTimeout:    cfg.PlatformTimeout,
	})

	routerCfg := &router.Config{
		Logger:             logger,
		Concierge:          handlers.NewConciergeHandler(svc, logger),
		AdminCatalog:       handlers.NewAdminCatalogHandler(platform, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
