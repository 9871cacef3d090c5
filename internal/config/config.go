package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds process configuration, loaded once at startup.
type Config struct {
	Port      string
	DBPath    string
	ModelDir  string
	JWTSecret string

	// Scoring engine knobs. The three radii intentionally differ per
	// call site and must not be unified: prediction-time context,
	// route incident counting, and the default reports query each use
	// their own value.
	PredictionRadiusKm float64
	IncidentRadiusKm   float64
	ReportsRadiusKm    float64
	CacheTTL           time.Duration

	// Route generation
	RouteCount      int
	RouteDistanceKm float64
	MidpointCount   int

	// Rate limiting
	RateLimit       int
	RateLimitWindow time.Duration
}

// Load reads configuration from the environment, falling back to
// development defaults.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", ":8080"),
		DBPath:    getEnv("DB_PATH", "./data/safehaven.db"),
		ModelDir:  getEnv("MODEL_DIR", "./data/safety-model"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),

		PredictionRadiusKm: getEnvFloat("PREDICTION_RADIUS_KM", 0.5),
		IncidentRadiusKm:   getEnvFloat("INCIDENT_RADIUS_KM", 0.2),
		ReportsRadiusKm:    getEnvFloat("REPORTS_RADIUS_KM", 1.0),
		CacheTTL:           getEnvDuration("PREDICTION_CACHE_TTL", 5*time.Minute),

		RouteCount:      getEnvInt("ROUTE_COUNT", 8),
		RouteDistanceKm: getEnvFloat("ROUTE_DISTANCE_KM", 1.0),
		MidpointCount:   getEnvInt("ROUTE_MIDPOINTS", 3),

		RateLimit:       getEnvInt("RATE_LIMIT", 120),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
