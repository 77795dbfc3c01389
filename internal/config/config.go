// Package config loads the service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

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
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// StoreConfig selects the case store backend.
type StoreConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite file path (sqlite driver)
	DSN    string // connection string (postgres driver)
}

// GenAIConfig configures the external generative model.
type GenAIConfig struct {
	Provider   string        // openai|mock
	Model      string        // model identifier passed to the provider
	APIKey     string        // provider credential
	BaseURL    string        // optional OpenAI-compatible endpoint
	Timeout    time.Duration // per-attempt deadline
	MaxRetries int           // bounded retries on ServiceUnavailable (0 = none)

	RetryBackoff time.Duration // first retry delay, doubled per retry up to MaxRetryBackoff
}

// MaxRetryBackoff caps the delay between generation retries.
const MaxRetryBackoff = 5 * time.Second

// WorstCase is the longest one generation may take: every attempt runs to
// its deadline and every retry waits its full backoff.
func (g GenAIConfig) WorstCase() time.Duration {
	total := g.Timeout * time.Duration(max(g.MaxRetries+1, 1))
	wait := g.RetryBackoff
	for i := 0; i < g.MaxRetries; i++ {
		total += min(wait, MaxRetryBackoff)
		wait *= 2
	}
	return total
}

// RedisConfig configures the optional dashboard cache.
type RedisConfig struct {
	Addr     string // empty disables the cache
	Password string
	DB       int
	TTL      time.Duration
}

// NotifyConfig configures case submission notifications.
type NotifyConfig struct {
	Enabled   bool
	Region    string // AWS region for SES/SNS
	EmailFrom string // verified SES sender; empty disables email
	SMS       bool   // send SMS through SNS when the case carries a phone number
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // must exceed GenAI.Timeout
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // trace|debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	Store                   StoreConfig
	LawLibraryPath          string  // markdown file of statutory provisions; empty uses the built-in library
	LawMatchThreshold       float64 // minimum similarity for a provision to be cited [0..1]
	LawTopK                 int     // provisions interpolated into the legal-advice prompt
	StrictStatusTransitions bool    // enforce new → in-progress → resolved

	// Generative model
	GenAI GenAIConfig

	// Rate limiting
	RateRPS     float64 // tokens per second (>= 0)
	RateBurst   int     // bucket size (>= 1)
	AIRateRPS   float64 // tokens per second on /actions routes
	AIRateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Dashboards cache
	Redis RedisConfig

	// Notifications
	Notify NotifyConfig

	// Observability
	OTEL OTELConfig
}

// Load reads the configuration from the environment. Unset or empty
// variables take their defaults; malformed values and out-of-range settings
// are all reported together in the returned error.
func Load() (Config, error) {
	var e env
	cfg := Config{
		Port:              e.str("PORT", "8080"),
		ReadTimeout:       e.dur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: e.dur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      e.dur("WRITE_TIMEOUT", 75*time.Second),
		IdleTimeout:       e.dur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    e.num("MAX_HEADER_BYTES", 1<<20),
		GinMode:           e.lower("GIN_MODE", "release"),

		LogLevel:       e.lower("LOG_LEVEL", "info"),
		LogPretty:      e.flag("LOG_PRETTY", false),
		SwaggerEnabled: e.flag("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(e.str("API_BASE_PATH", "/api/v1")),

		Store: StoreConfig{
			Driver: e.lower("DB_DRIVER", "sqlite"),
			Path:   e.str("DB_PATH", "legalaid.db"),
			DSN:    e.str("DB_DSN", ""),
		},
		LawLibraryPath:          e.str("LAW_LIBRARY_PATH", ""),
		LawMatchThreshold:       e.real("LAW_MATCH_THRESHOLD", 0.05),
		LawTopK:                 e.num("LAW_TOP_K", 3),
		StrictStatusTransitions: e.flag("STRICT_STATUS_TRANSITIONS", false),

		GenAI: GenAIConfig{
			Provider:   e.lower("GENAI_PROVIDER", "mock"),
			Model:      e.str("GENAI_MODEL", "gpt-4o-mini"),
			APIKey:     e.str("GENAI_API_KEY", ""),
			BaseURL:    e.str("GENAI_BASE_URL", ""),
			Timeout:    e.dur("GENAI_TIMEOUT", 45*time.Second),
			MaxRetries: e.num("GENAI_MAX_RETRIES", 0),

			RetryBackoff: e.dur("GENAI_RETRY_BACKOFF", 500*time.Millisecond),
		},

		RateRPS:     e.real("RATE_RPS", 5),
		RateBurst:   e.num("RATE_BURST", 10),
		AIRateRPS:   e.real("AI_RATE_RPS", 0.2),
		AIRateBurst: e.num("AI_RATE_BURST", 3),

		CORS: CORSConfig{AllowedOrigins: splitCSV(e.str("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: e.flag("ENABLE_HSTS", false),
			HSTSMaxAge: e.dur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: e.dur("IDEMPOTENCY_TTL", 24*time.Hour),

		Redis: RedisConfig{
			Addr:     e.str("REDIS_ADDR", ""),
			Password: e.str("REDIS_PASSWORD", ""),
			DB:       e.num("REDIS_DB", 0),
			TTL:      e.dur("DASHBOARD_CACHE_TTL", 30*time.Second),
		},

		Notify: NotifyConfig{
			Enabled:   e.flag("NOTIFY_ENABLED", false),
			Region:    e.str("AWS_REGION", "ap-south-1"),
			EmailFrom: e.str("NOTIFY_EMAIL_FROM", ""),
			SMS:       e.flag("NOTIFY_SMS", false),
		},

		OTEL: OTELConfig{
			Enabled:     e.flag("OTEL_ENABLED", false),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.flag("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: e.str("OTEL_SERVICE_NAME", "legal-aid-backend"),
			SampleRatio: e.real("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}
	cfg.normalize()
	return cfg, errors.Join(append(e.errs, cfg.validate()...)...)
}

// normalize folds accepted aliases onto their canonical spellings.
func (c *Config) normalize() {
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
	switch c.Store.Driver {
	case "postgresql", "pg":
		c.Store.Driver = "postgres"
	}
}

func (c Config) validate() []error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	check(slices.Contains([]string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}, c.LogLevel),
		"LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal, panic")
	check(!blank(c.Port), "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	switch c.Store.Driver {
	case "sqlite":
		check(!blank(c.Store.Path), "DB_PATH must not be empty")
	case "postgres":
		check(!blank(c.Store.DSN), "DB_DSN is required when DB_DRIVER=postgres")
	default:
		check(false, "DB_DRIVER must be one of: sqlite, postgres")
	}

	switch c.GenAI.Provider {
	case "mock":
	case "openai":
		check(!blank(c.GenAI.APIKey), "GENAI_API_KEY is required when GENAI_PROVIDER=openai")
		check(!blank(c.GenAI.Model), "GENAI_MODEL must not be empty")
	default:
		check(false, "GENAI_PROVIDER must be one of: openai, mock")
	}
	check(c.GenAI.Timeout > 0, "GENAI_TIMEOUT must be > 0")
	check(c.GenAI.MaxRetries >= 0 && c.GenAI.MaxRetries <= 5, "GENAI_MAX_RETRIES must be between 0 and 5")
	check(c.GenAI.RetryBackoff > 0, "GENAI_RETRY_BACKOFF must be > 0")
	check(c.WriteTimeout > c.GenAI.WorstCase(),
		"WRITE_TIMEOUT must exceed the worst-case generation time (GENAI_TIMEOUT for each of GENAI_MAX_RETRIES+1 attempts plus retry backoff)")

	check(c.LawMatchThreshold >= 0 && c.LawMatchThreshold <= 1, "LAW_MATCH_THRESHOLD must be in [0,1]")
	check(c.LawTopK >= 1 && c.LawTopK <= 10, "LAW_TOP_K must be between 1 and 10")
	check(c.RateRPS >= 0 && c.AIRateRPS >= 0, "RATE_RPS and AI_RATE_RPS must be >= 0")
	check(c.RateBurst >= 1 && c.AIRateBurst >= 1, "RATE_BURST and AI_RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.Redis.Addr == "" || c.Redis.TTL > 0, "DASHBOARD_CACHE_TTL must be > 0 when REDIS_ADDR is set")
	check(!c.Notify.Enabled || !blank(c.Notify.Region), "AWS_REGION is required when NOTIFY_ENABLED=true")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	return errs
}

// env reads typed variables and remembers every one it could not parse.
type env struct{ errs []error }

func (e *env) raw(k string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(k))
	return v, v != ""
}

func (e *env) str(k, def string) string {
	if v, ok := e.raw(k); ok {
		return v
	}
	return def
}

func (e *env) lower(k, def string) string { return strings.ToLower(e.str(k, def)) }

func parse[T any](e *env, k string, def T, fn func(string) (T, error)) T {
	v, ok := e.raw(k)
	if !ok {
		return def
	}
	out, err := fn(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid value %q", k, v))
		return def
	}
	return out
}

func (e *env) num(k string, def int) int { return parse(e, k, def, strconv.Atoi) }

func (e *env) dur(k string, def time.Duration) time.Duration {
	return parse(e, k, def, time.ParseDuration)
}

func (e *env) real(k string, def float64) float64 {
	return parse(e, k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func (e *env) flag(k string, def bool) bool {
	return parse(e, k, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, errors.New("not a boolean")
	})
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns p with one leading slash and no trailing one.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
