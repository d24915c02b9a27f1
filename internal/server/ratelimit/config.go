package ratelimit

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultLimit           = 300
	defaultCleanupInterval = 5 * time.Minute
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching for paths ending in "/")
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", defaultLimit),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", defaultCleanupInterval),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits, tiered by how much
// schema resolution a request triggers.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Multi-schema comparison resolves every uploaded version.
		{Path: "/api/multicompare", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},

		// Pairwise comparison resolves two schemas per request.
		{Path: "/api/compare", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Single-schema operations.
		{Path: "/api/analyze", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/mapping", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// Run history reads are cheap; still bounded to protect the database.
		{Path: "/api/runs", Method: "GET", Limit: 120, Window: time.Minute, Burst: 30},
		{Path: "/api/runs/", Method: "GET", Limit: 120, Window: time.Minute, Burst: 30},
		{Path: "/api/runs/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},

		// Health check is unlimited, handled as a special case in the matcher.
	}
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
