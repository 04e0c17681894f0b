package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RESOLVE_SCORE_THRESHOLD", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.ResolveScoreThreshold != 50 {
		t.Fatalf("expected default threshold 50, got %v", cfg.ResolveScoreThreshold)
	}
	if cfg.ResolveAmbiguityWindow != 10 {
		t.Fatalf("expected default ambiguity window 10, got %v", cfg.ResolveAmbiguityWindow)
	}
	if cfg.MaxDates != 3 || cfg.MaxSlotsPerDate != 4 {
		t.Fatalf("expected default caps 3/4, got %d/%d", cfg.MaxDates, cfg.MaxSlotsPerDate)
	}
	if cfg.BusinessHoursOpen != 8 || cfg.BusinessHoursClose != 21 {
		t.Fatalf("expected default business hours 8-21, got %d-%d", cfg.BusinessHoursOpen, cfg.BusinessHoursClose)
	}
	if cfg.PlatformTimeout != 10*time.Second {
		t.Fatalf("expected default platform timeout, got %s", cfg.PlatformTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no default CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PLATFORM_API_BASE_URL", "https://platform.test/graphql")
	t.Setenv("PLATFORM_API_KEY", "key-123")
	t.Setenv("PLATFORM_BUSINESS_ID", "biz_9")
	t.Setenv("PLATFORM_TIMEOUT", "3s")
	t.Setenv("DEFAULT_TIMEZONE", "America/Los_Angeles")
	t.Setenv("RESOLVE_SCORE_THRESHOLD", "62.5")
	t.Setenv("RESOLVE_AMBIGUITY_WINDOW", "5")
	t.Setenv("MAX_DATES", "5")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.PlatformBaseURL != "https://platform.test/graphql" {
		t.Fatalf("expected platform url override, got %s", cfg.PlatformBaseURL)
	}
	if cfg.PlatformTimeout != 3*time.Second {
		t.Fatalf("expected platform timeout override, got %s", cfg.PlatformTimeout)
	}
	if cfg.DefaultTimezone != "America/Los_Angeles" {
		t.Fatalf("expected timezone override, got %s", cfg.DefaultTimezone)
	}
	if cfg.ResolveScoreThreshold != 62.5 {
		t.Fatalf("expected threshold override, got %v", cfg.ResolveScoreThreshold)
	}
	if cfg.ResolveAmbiguityWindow != 5 {
		t.Fatalf("expected window override, got %v", cfg.ResolveAmbiguityWindow)
	}
	if cfg.MaxDates != 5 {
		t.Fatalf("expected max dates override, got %d", cfg.MaxDates)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.RateLimitRPS)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected two trimmed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}
