package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	Uploads  UploadConfig
	Storage  StorageConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr      string `env:"SERVER_ADDR"`
	StaticDir string `env:"STATIC_DIR" envDefault:"web/static"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `env:"DATABASE_CONN_MAX_IDLE_TIME"`
	UseMock         bool          `env:"DATABASE_USE_MOCK"`
}

// LoggingConfig selects the global log level.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig groups authentication settings.
type AuthConfig struct {
	Session SessionConfig
}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	Lifetime     time.Duration `env:"SESSION_LIFETIME" envDefault:"12h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"qcs_session"`
	CookieDomain string        `env:"SESSION_COOKIE_DOMAIN"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
}

// UploadConfig configures attachment keys and the file type allow-lists.
type UploadConfig struct {
	CoaDir            string   `env:"COA_DIR" envDefault:"coa/"`
	ColorDir          string   `env:"COLOR_DIR" envDefault:"color/"`
	MaxBytes          int64    `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
	AllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS" envSeparator:"," envDefault:"pdf,jpg,jpeg,png,xls,xlsx,doc,docx"`
	AllowedMIMETypes  []string `env:"UPLOAD_ALLOWED_MIME_TYPES" envSeparator:"," envDefault:"application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/msword,image/jpeg,image/png,application/pdf,application/vnd.ms-excel,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"`
}

// StorageConfig selects where uploaded files are kept.
type StorageConfig struct {
	Backend   string `env:"STORAGE_BACKEND" envDefault:"fs"`
	MediaRoot string `env:"MEDIA_ROOT" envDefault:"media"`
	S3        S3Config
}

// S3Config configures the S3 storage backend.
type S3Config struct {
	Bucket          string `env:"S3_BUCKET"`
	Region          string `env:"S3_REGION"`
	Endpoint        string `env:"S3_ENDPOINT"`
	Prefix          string `env:"S3_PREFIX"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE"`
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Server.Addr = firstNonEmpty(
		cfg.Server.Addr,
		os.Getenv("ADDR"),
		":8080",
	)

	cfg.Database.URL = firstNonEmpty(
		cfg.Database.URL,
		os.Getenv("DB_URL"),
		"",
	)

	cfg.Uploads.CoaDir = normalizeDir(cfg.Uploads.CoaDir)
	cfg.Uploads.ColorDir = normalizeDir(cfg.Uploads.ColorDir)
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if c.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}
	for _, dir := range []string{c.Uploads.CoaDir, c.Uploads.ColorDir} {
		if dir == "/" || strings.HasPrefix(dir, "/") || strings.Contains(dir, "..") {
			return fmt.Errorf("upload directory %q must be a relative key prefix", dir)
		}
	}
	switch c.Storage.Backend {
	case "fs":
	case "s3":
		if strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

func normalizeDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
