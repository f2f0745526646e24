package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads so defaults are exercised.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT",
		"IDLE_TIMEOUT", "MAX_HEADER_BYTES", "GIN_MODE", "LOG_LEVEL",
		"LOG_PRETTY", "API_BASE_PATH", "MONGO_URI", "MONGO_DB", "JWT_SECRET",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "MIN_PASSWORD_LENGTH",
		"RATE_RPS", "RATE_BURST", "CORS_ALLOWED_ORIGINS", "ENABLE_HSTS",
		"HSTS_MAX_AGE", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SERVICE_NAME",
		"OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.MongoDB != "blog" {
		t.Errorf("MongoDB = %q", cfg.MongoDB)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Errorf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 30*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v", cfg.RefreshTokenTTL)
	}
	if cfg.MinPasswordLen != 3 {
		t.Errorf("MinPasswordLen = %d", cfg.MinPasswordLen)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("want JWT_SECRET error, got %v", err)
	}
}

func TestLoad_Normalization(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("API_BASE_PATH", "api/v1/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want warn", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q; want release fallback", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q; want /api/v1", cfg.APIBasePath)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		k, v string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad rate burst", "RATE_BURST", "0"},
		{"bad min password", "MIN_PASSWORD_LENGTH", "0"},
		{"bad sampler", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("JWT_SECRET", "s")
			t.Setenv(tc.k, tc.v)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%s", tc.k, tc.v)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a.example.com , ,b.example.com,")
	if len(got) != 2 || got[0] != "a.example.com" || got[1] != "b.example.com" {
		t.Errorf("splitCSV = %v", got)
	}
	if splitCSV("") != nil {
		t.Errorf("empty input should yield nil")
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":       "/",
		"/":      "/",
		"api":    "/api",
		"/api":   "/api",
		"/api/":  "/api",
		"api/v2": "/api/v2",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}
