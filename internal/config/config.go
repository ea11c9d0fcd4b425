// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, upstream provider credentials, cache TTLs,
// rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// UpstreamConfig defines the connection to the booking provider API.
type UpstreamConfig struct {
	BaseURL    string        // UPSTREAM_BASE_URL (e.g. "https://api.bookingprovider.example")
	BusinessID string        // UPSTREAM_BUSINESS_ID
	APIKey     string        // UPSTREAM_API_KEY
	Timeout    time.Duration // UPSTREAM_TIMEOUT per-request HTTP timeout
	RPS        float64       // UPSTREAM_RPS outbound politeness limit (0 disables)
	Burst      int           // UPSTREAM_BURST outbound burst size
}

// CacheConfig tunes the in-process TTL cache.
type CacheConfig struct {
	CatalogTTL      time.Duration // CATALOG_TTL services/providers lifetime
	AvailabilityTTL time.Duration // AVAILABILITY_TTL slot inventory lifetime
	SweepInterval   time.Duration // CACHE_SWEEP_INTERVAL janitor period
}

// RetryConfig bounds upstream retry behavior.
type RetryConfig struct {
	MaxAttempts     int           // RETRY_MAX_ATTEMPTS total invocations per call
	InitialInterval time.Duration // RETRY_INITIAL_INTERVAL first backoff delay
	MaxInterval     time.Duration // RETRY_MAX_INTERVAL backoff cap
}

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-booking-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route

	// App
	DBPath              string // SQLite path for reservation receipts
	BookingWindowMonths int    // how far ahead a date may be booked

	// Upstream provider
	Upstream UpstreamConfig

	// Cache
	Cache CacheConfig

	// Retry
	Retry RetryConfig

	// Rate limiting (fixed window per client)
	RateCapacity int           // requests per window (>= 1)
	RateWindow   time.Duration // window length (> 0)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		// App
		DBPath:              getenv("DB_PATH", "booking.db"),
		BookingWindowMonths: getint("BOOKING_WINDOW_MONTHS", 2),

		// Upstream provider
		Upstream: UpstreamConfig{
			BaseURL:    getenv("UPSTREAM_BASE_URL", ""),
			BusinessID: getenv("UPSTREAM_BUSINESS_ID", ""),
			APIKey:     getenv("UPSTREAM_API_KEY", ""),
			Timeout:    getdur("UPSTREAM_TIMEOUT", 10*time.Second),
			RPS:        getfloat("UPSTREAM_RPS", 10.0),
			Burst:      getint("UPSTREAM_BURST", 20),
		},

		// Cache
		Cache: CacheConfig{
			CatalogTTL:      getdur("CATALOG_TTL", time.Hour),
			AvailabilityTTL: getdur("AVAILABILITY_TTL", 15*time.Minute),
			SweepInterval:   getdur("CACHE_SWEEP_INTERVAL", 5*time.Minute),
		},

		// Retry
		Retry: RetryConfig{
			MaxAttempts:     getint("RETRY_MAX_ATTEMPTS", 3),
			InitialInterval: getdur("RETRY_INITIAL_INTERVAL", 200*time.Millisecond),
			MaxInterval:     getdur("RETRY_MAX_INTERVAL", 2*time.Second),
		},

		// Rate limiting
		RateCapacity: getint("RATE_CAPACITY", 30),
		RateWindow:   getdur("RATE_WINDOW", time.Minute),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-booking-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.BookingWindowMonths < 1 {
		return cfg, errors.New("BOOKING_WINDOW_MONTHS must be >= 1")
	}
	if cfg.Upstream.Timeout <= 0 {
		return cfg, errors.New("UPSTREAM_TIMEOUT must be > 0")
	}
	if cfg.Upstream.RPS < 0 {
		return cfg, errors.New("UPSTREAM_RPS must be >= 0")
	}
	if cfg.Cache.CatalogTTL <= 0 || cfg.Cache.AvailabilityTTL <= 0 {
		return cfg, errors.New("cache TTLs must be positive durations")
	}
	if cfg.Cache.SweepInterval <= 0 {
		return cfg, errors.New("CACHE_SWEEP_INTERVAL must be > 0")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return cfg, errors.New("RETRY_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.RateCapacity < 1 {
		return cfg, errors.New("RATE_CAPACITY must be >= 1")
	}
	if cfg.RateWindow <= 0 {
		return cfg, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
