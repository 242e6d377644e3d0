package config

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Exit(m.Run())
}

func setenv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Config{
		Port:              "8080",
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		GinMode:           "release",
		LogLevel:          "info",
		APIBasePath:       "/api/v1",
		DBDriver:          "sqlite",
		DBPath:            "contact.db",
		StorageKey:        "formSubmissions",
		ReviewCounterKey:  "reviewCount",
		Site: SiteConfig{
			CompanyName:    "Elevate Digital",
			ContactEmail:   "hello@elevatedigital.com",
			MaxSubmissions: 3,
		},
		RateRPS:        5,
		RateBurst:      10,
		SubmitRPS:      0.2,
		SubmitBurst:    3,
		Security:       SecurityConfig{HSTSMaxAge: 180 * 24 * time.Hour},
		IdempotencyTTL: 24 * time.Hour,
		OTEL: OTELConfig{
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: "go-contact-backend",
			SampleRatio: 1,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	setenv(t, map[string]string{
		"PORT":                        "8088",
		"READ_TIMEOUT":                "2s",
		"READ_HEADER_TIMEOUT":         "1s",
		"WRITE_TIMEOUT":               "3s",
		"IDLE_TIMEOUT":                "4s",
		"MAX_HEADER_BYTES":            "8192",
		"GIN_MODE":                    "weird",
		"LOG_LEVEL":                   "warning",
		"LOG_PRETTY":                  "yes",
		"SWAGGER_ENABLED":             "on",
		"API_BASE_PATH":               "api/v1/",
		"DB_DRIVER":                   "PostgreSQL",
		"DB_DSN":                      "postgres://u:p@db:5432/contact",
		"STORAGE_KEY":                 "submissions",
		"REVIEW_COUNTER_KEY":          "reviews",
		"COMPANY_NAME":                "Acme",
		"CONTACT_EMAIL":               "sales@acme.test",
		"MAX_SUBMISSIONS":             "5",
		"CATALOG_PATH":                "catalog.yaml",
		"RATE_RPS":                    "x",
		"RATE_BURST":                  "nope",
		"SUBMIT_RPS":                  "0",
		"CORS_ALLOWED_ORIGINS":        " https://a.com , , http://b ",
		"ENABLE_HSTS":                 "TRUE",
		"HSTS_MAX_AGE":                "24h",
		"IDEMPOTENCY_TTL":             "48h",
		"OTEL_ENABLED":                "1",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "otel:4317",
		"OTEL_EXPORTER_OTLP_INSECURE": "0",
		"OTEL_SERVICE_NAME":           "svc",
		"OTEL_TRACES_SAMPLER_ARG":     "0.75",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Config{
		Port:              "8088",
		ReadTimeout:       2 * time.Second,
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      3 * time.Second,
		IdleTimeout:       4 * time.Second,
		MaxHeaderBytes:    8192,
		GinMode:           "release",
		LogLevel:          "warn",
		LogPretty:         true,
		SwaggerEnabled:    true,
		APIBasePath:       "/api/v1",
		DBDriver:          "postgres",
		DBPath:            "contact.db",
		DBDSN:             "postgres://u:p@db:5432/contact",
		StorageKey:        "submissions",
		ReviewCounterKey:  "reviews",
		Site: SiteConfig{
			CompanyName:    "Acme",
			ContactEmail:   "sales@acme.test",
			MaxSubmissions: 5,
			CatalogPath:    "catalog.yaml",
		},
		// Unparsable rate values fall back to defaults.
		RateRPS:        5,
		RateBurst:      10,
		SubmitRPS:      0,
		SubmitBurst:    3,
		CORS:           CORSConfig{AllowedOrigins: []string{"https://a.com", "http://b"}},
		Security:       SecurityConfig{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour},
		IdempotencyTTL: 48 * time.Hour,
		OTEL: OTELConfig{
			Enabled:     true,
			Endpoint:    "otel:4317",
			Insecure:    false,
			ServiceName: "svc",
			SampleRatio: 0.75,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"blank port", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"zero timeout", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"blank sqlite path", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"postgres without dsn", map[string]string{"DB_DRIVER": "pg"}, "DB_DSN"},
		{"unknown driver", map[string]string{"DB_DRIVER": "mongo"}, "DB_DRIVER"},
		{"blank storage key", map[string]string{"STORAGE_KEY": " "}, "must not be empty"},
		{"colliding keys", map[string]string{"STORAGE_KEY": "same", "REVIEW_COUNTER_KEY": "same"}, "must differ"},
		{"no submissions allowed", map[string]string{"MAX_SUBMISSIONS": "0"}, "MAX_SUBMISSIONS"},
		{"contact email", map[string]string{"CONTACT_EMAIL": "nobody"}, "CONTACT_EMAIL"},
		{"negative rps", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"zero burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"negative submit rps", map[string]string{"SUBMIT_RPS": "-0.5"}, "SUBMIT_RPS"},
		{"submit burst", map[string]string{"SUBMIT_RPS": "1", "SUBMIT_BURST": "0"}, "SUBMIT_BURST"},
		{"negative hsts", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"idempotency ttl", map[string]string{"IDEMPOTENCY_TTL": "0s"}, "IDEMPOTENCY_TTL"},
		{"sample ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setenv(t, tc.env)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load() error = %v; want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestMustLoad(t *testing.T) {
	t.Run("valid defaults", func(t *testing.T) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("MustLoad panicked on valid defaults: %v", r)
			}
		}()
		if cfg := MustLoad(); cfg.APIBasePath == "" {
			t.Fatalf("unexpected empty config from MustLoad")
		}
	})
	t.Run("invalid config panics", func(t *testing.T) {
		t.Setenv("MAX_SUBMISSIONS", "-3")
		defer func() {
			if recover() == nil {
				t.Fatalf("MustLoad should panic on invalid config")
			}
		}()
		_ = MustLoad()
	})
}

func TestLookupHelpers(t *testing.T) {
	setenv(t, map[string]string{
		"F_OK": "3.14", "F_BAD": "nope",
		"I_OK": "42", "I_BAD": "x",
		"D_OK": "150ms", "D_BAD": "zzz",
		"S_EMPTY": "",
	})
	if getenv("S_EMPTY", "d") != "d" || getenv("F_OK", "d") != "3.14" {
		t.Fatalf("getenv fallback broken")
	}
	if getfloat("F_OK", 0) != 3.14 || getfloat("F_BAD", 1.5) != 1.5 {
		t.Fatalf("getfloat broken")
	}
	if getint("I_OK", 0) != 42 || getint("I_BAD", 7) != 7 {
		t.Fatalf("getint broken")
	}
	if getdur("D_OK", time.Second) != 150*time.Millisecond || getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur broken")
	}
}

func TestParseBool(t *testing.T) {
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		k := "B_T_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for i, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		k := "B_F_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_JUNK", "maybe")
	if !getbool("B_JUNK", true) || getbool("B_JUNK", false) {
		t.Fatalf("unrecognised values must fall back to the default")
	}
	if _, err := parseBool("maybe"); err != errNotBool {
		t.Fatalf("parseBool error = %v; want errNotBool", err)
	}
}

func TestSplitCSVAndBasePath(t *testing.T) {
	if splitCSV("") != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, splitCSV(" a, ,b ,  c  ,")); diff != "" {
		t.Fatalf("splitCSV (-want +got):\n%s", diff)
	}
	for in, want := range map[string]string{"": "/", "v1": "/v1", "/v1/": "/v1", " / ": "/", "/api//": "/api"} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}
