package config

import (
	"strings"
	"testing"
	"time"
)

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"all empty", []string{"", "   "}, ""},
		{"first non empty", []string{"foo", "bar"}, "foo"},
		{"skips whitespace", []string{"   ", "bar"}, "bar"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := firstNonEmpty(tt.values...); got != tt.want {
				t.Fatalf("firstNonEmpty(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestNormalizeDir(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"coa":     "coa/",
		"coa/":    "coa/",
		" color ": "color/",
		"":        "",
	}
	for in, want := range tests {
		if got := normalizeDir(in); got != want {
			t.Fatalf("normalizeDir(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadUsesEnvironmentDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("ADDR", "")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "10")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "100")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "1h")
	t.Setenv("DATABASE_CONN_MAX_IDLE_TIME", "30m")
	t.Setenv("DATABASE_USE_MOCK", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_LIFETIME", "45m")
	t.Setenv("SESSION_COOKIE_NAME", "custom_session")
	t.Setenv("SESSION_COOKIE_DOMAIN", "example.com")
	t.Setenv("SESSION_COOKIE_SECURE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Database.URL != "postgres://example" {
		t.Fatalf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Database.MaxIdleConns != 10 {
		t.Fatalf("Database.MaxIdleConns = %d", cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns != 100 {
		t.Fatalf("Database.MaxOpenConns = %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour {
		t.Fatalf("Database.ConnMaxLifetime = %s", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Database.ConnMaxIdleTime != 30*time.Minute {
		t.Fatalf("Database.ConnMaxIdleTime = %s", cfg.Database.ConnMaxIdleTime)
	}
	if !cfg.Database.UseMock {
		t.Fatalf("Database.UseMock = %t, want true", cfg.Database.UseMock)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Auth.Session.Lifetime != 45*time.Minute {
		t.Fatalf("Auth.Session.Lifetime = %s", cfg.Auth.Session.Lifetime)
	}
	if cfg.Auth.Session.CookieName != "custom_session" {
		t.Fatalf("Auth.Session.CookieName = %q", cfg.Auth.Session.CookieName)
	}
	if cfg.Auth.Session.CookieDomain != "example.com" {
		t.Fatalf("Auth.Session.CookieDomain = %q", cfg.Auth.Session.CookieDomain)
	}
	if cfg.Auth.Session.CookieSecure {
		t.Fatalf("Auth.Session.CookieSecure = %t, want false", cfg.Auth.Session.CookieSecure)
	}
}

func TestLoadUploadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Uploads.CoaDir != "coa/" || cfg.Uploads.ColorDir != "color/" {
		t.Fatalf("upload dirs = %q, %q", cfg.Uploads.CoaDir, cfg.Uploads.ColorDir)
	}
	if cfg.Uploads.MaxBytes != 10<<20 {
		t.Fatalf("Uploads.MaxBytes = %d", cfg.Uploads.MaxBytes)
	}
	if got := strings.Join(cfg.Uploads.AllowedExtensions, ","); got != "pdf,jpg,jpeg,png,xls,xlsx,doc,docx" {
		t.Fatalf("Uploads.AllowedExtensions = %q", got)
	}
	if len(cfg.Uploads.AllowedMIMETypes) != 7 {
		t.Fatalf("Uploads.AllowedMIMETypes = %v", cfg.Uploads.AllowedMIMETypes)
	}
	if cfg.Storage.Backend != "fs" || cfg.Storage.MediaRoot != "media" {
		t.Fatalf("Storage = %+v", cfg.Storage)
	}
	if cfg.Auth.Session.CookieName != "qcs_session" || !cfg.Auth.Session.CookieSecure {
		t.Fatalf("Auth.Session = %+v", cfg.Auth.Session)
	}
}

func TestLoadPrefersServerAddr(t *testing.T) {
	t.Setenv("SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("ADDR", ":7000")
	t.Setenv("DATABASE_URL", "postgres://example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:9000")
	}
}

func TestLoadFallsBackToLegacyAliases(t *testing.T) {
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("ADDR", ":7000")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "sqlite://qcs.db")
	t.Setenv("COA_DIR", "certificates")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Fatalf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Database.URL != "sqlite://qcs.db" {
		t.Fatalf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Uploads.CoaDir != "certificates/" {
		t.Fatalf("Uploads.CoaDir = %q", cfg.Uploads.CoaDir)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"malformed bool", map[string]string{"SESSION_COOKIE_SECURE": "nope"}},
		{"malformed duration", map[string]string{"SESSION_LIFETIME": "forever"}},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "ftp"}},
		{"s3 without bucket", map[string]string{"STORAGE_BACKEND": "s3", "S3_BUCKET": ""}},
		{"escaping upload dir", map[string]string{"COLOR_DIR": "../color"}},
		{"zero upload limit", map[string]string{"UPLOAD_MAX_BYTES": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected Load() to fail")
			}
		})
	}
}
