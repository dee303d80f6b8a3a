// Package config loads application settings from environment variables,
// applies defaults and validates the result.
package config

import (
	"errors"
	"strings"
	"time"
)

// CORSConfig lists the origins allowed to call the API from a browser.
// Empty means any origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig controls HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT, e.g. "otel:4317"
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// PresenceConfig holds the presence and unread-activity windows.
type PresenceConfig struct {
	OnlineWindow      time.Duration // ONLINE_WINDOW: heartbeat recency that counts as online
	UnreadWindow      time.Duration // UNREAD_WINDOW: age limit for private/support unread counts
	HeartbeatInterval time.Duration // HEARTBEAT_INTERVAL: advertised client cadence
	PrivateRetention  time.Duration // PRIVATE_RETENTION: private messages older than this are pruned
	PruneInterval     time.Duration // PRUNE_INTERVAL: how often the pruner runs
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	LogRedact      bool // false switches to the verbose unredacted access log
	SwaggerEnabled bool
	APIBasePath    string

	// Storage
	DBDriver    string // sqlite|postgres
	DBPath      string
	DatabaseURL string

	Presence PresenceConfig

	MaxMessageRunes int

	// Rate limiting
	RateRPS   float64
	RateBurst int
	RedisURL  string // when set, limits are shared across instances

	// JWTSecret is the HS256 key. Empty means X-User-ID is trusted.
	JWTSecret string

	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration

	OTEL OTELConfig
}

// Load reads the environment, applies defaults and validates. On error the
// partially filled Config is returned along with every problem found.
func Load() (Config, error) {
	cfg := Config{
		Port:              envString("PORT", "8080"),
		ReadTimeout:       envDuration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: envDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      envDuration("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       envDuration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    envInt("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(envString("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(envString("LOG_LEVEL", "info")),
		LogPretty:      envBool("LOG_PRETTY", false),
		LogRedact:      envBool("LOG_REDACT", true),
		SwaggerEnabled: envBool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(envString("API_BASE_PATH", "/api/v1")),

		DBDriver:    strings.ToLower(envString("DB_DRIVER", "sqlite")),
		DBPath:      envString("DB_PATH", "app.db"),
		DatabaseURL: envString("DATABASE_URL", ""),

		Presence: PresenceConfig{
			OnlineWindow:      envDuration("ONLINE_WINDOW", 5*time.Minute),
			UnreadWindow:      envDuration("UNREAD_WINDOW", 24*time.Hour),
			HeartbeatInterval: envDuration("HEARTBEAT_INTERVAL", 60*time.Second),
			PrivateRetention:  envDuration("PRIVATE_RETENTION", 24*time.Hour),
			PruneInterval:     envDuration("PRUNE_INTERVAL", 10*time.Minute),
		},

		MaxMessageRunes: envInt("MAX_MESSAGE_RUNES", 2000),

		RateRPS:   envFloat("RATE_RPS", 5.0),
		RateBurst: envInt("RATE_BURST", 10),
		RedisURL:  envString("REDIS_URL", ""),

		JWTSecret: envString("AUTH_JWT_SECRET", ""),

		CORS: CORSConfig{AllowedOrigins: envList("CORS_ALLOWED_ORIGINS")},
		Security: SecurityConfig{
			EnableHSTS: envBool("ENABLE_HSTS", false),
			HSTSMaxAge: envDuration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			Endpoint:    envString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: envString("OTEL_SERVICE_NAME", "ghostgear-presence"),
			SampleRatio: envFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DBDriver == "postgresql" {
		cfg.DBDriver = "postgres"
	}

	return cfg, cfg.validate()
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func (c Config) validate() error {
	var errs []error
	check := func(bad bool, msg string) {
		if bad {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"))
	}
	check(strings.TrimSpace(c.Port) == "", "PORT must not be empty")
	check(c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0")

	switch c.DBDriver {
	case "sqlite":
		check(strings.TrimSpace(c.DBPath) == "", "DB_PATH must not be empty")
	case "postgres":
		check(strings.TrimSpace(c.DatabaseURL) == "", "DATABASE_URL must be set when DB_DRIVER=postgres")
	default:
		errs = append(errs, errors.New("DB_DRIVER must be one of: sqlite, postgres"))
	}

	p := c.Presence
	check(p.OnlineWindow <= 0 || p.UnreadWindow <= 0 || p.HeartbeatInterval <= 0 || p.PrivateRetention <= 0 || p.PruneInterval <= 0,
		"presence windows and intervals must be positive durations")
	check(p.HeartbeatInterval > 0 && p.HeartbeatInterval >= p.OnlineWindow,
		"HEARTBEAT_INTERVAL must be shorter than ONLINE_WINDOW")

	check(c.MaxMessageRunes < 1, "MAX_MESSAGE_RUNES must be >= 1")
	check(c.RateRPS < 0, "RATE_RPS must be >= 0")
	check(c.RateBurst < 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}
