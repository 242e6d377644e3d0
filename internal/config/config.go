// Package config reads contactd's settings from the environment (optionally
// seeded from a .env file by the CLI), fills in defaults and validates them.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig lists the browser origins allowed to call the API; empty allows
// any origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig controls Strict-Transport-Security.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig configures trace export over OTLP/gRPC.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-contact-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// SiteConfig holds the business settings of the marketing site the contact
// form belongs to.
type SiteConfig struct {
	CompanyName    string // shown in user-facing messages
	ContactEmail   string // alternate channel once the submission limit is hit
	MaxSubmissions int    // per-visitor submission ceiling
	CatalogPath    string // optional YAML service catalog; embedded default when empty
}

// Config is the complete contactd configuration. Environment variable names
// are listed in Load.
type Config struct {
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug, release or test

	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string // normalized: leading slash, no trailing slash

	DBDriver         string // sqlite or postgres
	DBPath           string
	DBDSN            string
	StorageKey       string // key of the per-visitor submission list
	ReviewCounterKey string // key of the per-visitor review counter

	Site SiteConfig

	// General per-visitor budget, plus a tighter one for submission writes.
	RateRPS     float64
	RateBurst   int
	SubmitRPS   float64 // 0 disables the write budget
	SubmitBurst int

	CORS     CORSConfig
	Security SecurityConfig

	// IdempotencyTTL is how long a submit can be replayed by its key.
	IdempotencyTTL time.Duration

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

// Load builds a Config from the environment. Unset or unparsable variables
// take their defaults; the result is normalized and then validated.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		DBDriver:         strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBPath:           getenv("DB_PATH", "contact.db"),
		DBDSN:            getenv("DB_DSN", ""),
		StorageKey:       getenv("STORAGE_KEY", "formSubmissions"),
		ReviewCounterKey: getenv("REVIEW_COUNTER_KEY", "reviewCount"),

		Site: SiteConfig{
			CompanyName:    getenv("COMPANY_NAME", "Elevate Digital"),
			ContactEmail:   getenv("CONTACT_EMAIL", "hello@elevatedigital.com"),
			MaxSubmissions: getint("MAX_SUBMISSIONS", 3),
			CatalogPath:    getenv("CATALOG_PATH", ""),
		},

		RateRPS:     getfloat("RATE_RPS", 5.0),
		RateBurst:   getint("RATE_BURST", 10),
		SubmitRPS:   getfloat("SUBMIT_RPS", 0.2),
		SubmitBurst: getint("SUBMIT_BURST", 3),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-contact-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
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
	if cfg.DBDriver == "postgresql" || cfg.DBDriver == "pg" {
		cfg.DBDriver = "postgres"
	}

	return cfg, cfg.validate()
}

// validate reports the first invalid setting.
func (c Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if c.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch c.DBDriver {
	case "sqlite":
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(c.DBDSN) == "" {
			return errors.New("DB_DSN must not be empty when DB_DRIVER=postgres")
		}
	default:
		return errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if strings.TrimSpace(c.StorageKey) == "" || strings.TrimSpace(c.ReviewCounterKey) == "" {
		return errors.New("STORAGE_KEY and REVIEW_COUNTER_KEY must not be empty")
	}
	if c.StorageKey == c.ReviewCounterKey {
		return errors.New("STORAGE_KEY and REVIEW_COUNTER_KEY must differ")
	}
	if c.Site.MaxSubmissions < 1 {
		return errors.New("MAX_SUBMISSIONS must be >= 1")
	}
	if !strings.Contains(c.Site.ContactEmail, "@") {
		return errors.New("CONTACT_EMAIL must be an email address")
	}
	if c.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if c.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if c.SubmitRPS < 0 {
		return errors.New("SUBMIT_RPS must be >= 0")
	}
	if c.SubmitRPS > 0 && c.SubmitBurst < 1 {
		return errors.New("SUBMIT_BURST must be >= 1 when SUBMIT_RPS is set")
	}
	if c.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if c.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// lookup parses the variable k, falling back to def when it is empty or does
// not parse.
func lookup[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func getenv(k, def string) string {
	return lookup(k, def, func(v string) (string, error) { return v, nil })
}

func getfloat(k string, def float64) float64 {
	return lookup(k, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

func getint(k string, def int) int { return lookup(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration { return lookup(k, def, time.ParseDuration) }

func getbool(k string, def bool) bool { return lookup(k, def, parseBool) }

var errNotBool = errors.New("not a boolean")

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, errNotBool
}

// splitCSV returns the non-blank comma separated items of s, trimmed.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns "/" for blank input, otherwise p with one leading
// slash and no trailing ones.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
