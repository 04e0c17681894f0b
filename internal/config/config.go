package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Booking platform API
	PlatformBaseURL    string
	PlatformAPIKey     string
	PlatformBusinessID string
	PlatformTimeout    time.Duration

	// Resolution and aggregation tuning
	DefaultTimezone        string
	ResolveScoreThreshold  float64
	ResolveAmbiguityWindow float64
	MaxDates               int
	MaxSlotsPerDate        int
	BusinessHoursOpen      int
	BusinessHoursClose     int

	// HTTP surface
	RateLimitRPS       float64
	RateLimitBurst     int
	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PlatformBaseURL:    getEnv("PLATFORM_API_BASE_URL", ""),
		PlatformAPIKey:     getEnv("PLATFORM_API_KEY", ""),
		PlatformBusinessID: getEnv("PLATFORM_BUSINESS_ID", ""),
		PlatformTimeout:    getEnvAsDuration("PLATFORM_TIMEOUT", 10*time.Second),

		DefaultTimezone:        getEnv("DEFAULT_TIMEZONE", "America/New_York"),
		ResolveScoreThreshold:  getEnvAsFloat("RESOLVE_SCORE_THRESHOLD", 50),
		ResolveAmbiguityWindow: getEnvAsFloat("RESOLVE_AMBIGUITY_WINDOW", 10),
		MaxDates:               getEnvAsInt("MAX_DATES", 3),
		MaxSlotsPerDate:        getEnvAsInt("MAX_SLOTS_PER_DATE", 4),
		BusinessHoursOpen:      getEnvAsInt("BUSINESS_HOURS_OPEN", 8),
		BusinessHoursClose:     getEnvAsInt("BUSINESS_HOURS_CLOSE", 21),

		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
