package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"qcs/internal/config"
	"qcs/internal/db"
	"qcs/internal/db/mock"
	applog "qcs/internal/log"
	"qcs/internal/server"
	"qcs/internal/storage"
	"qcs/internal/upload"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newStorageFunc      = storage.New
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}

	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}

	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		return 1
	}

	store, err := newStorageFunc(ctx, storage.Config{
		Backend: cfg.Storage.Backend,
		Root:    cfg.Storage.MediaRoot,
		S3: storage.S3Config{
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			Endpoint:        cfg.Storage.S3.Endpoint,
			Prefix:          cfg.Storage.S3.Prefix,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			UsePathStyle:    cfg.Storage.S3.UsePathStyle,
		},
	})
	if err != nil {
		applog.Error(ctx, "failed to configure storage", "backend", cfg.Storage.Backend, "error", err)
		return 1
	}

	srv, err := newServerFunc(server.Config{
		Addr:      cfg.Server.Addr,
		StaticDir: cfg.Server.StaticDir,
		Session: server.SessionConfig{
			Lifetime:     cfg.Auth.Session.Lifetime,
			CookieName:   cfg.Auth.Session.CookieName,
			CookieDomain: cfg.Auth.Session.CookieDomain,
			CookieSecure: cfg.Auth.Session.CookieSecure,
		},
		Database: database,
		Storage:  store,
		Uploads: server.UploadConfig{
			Validator: upload.NewValidator(cfg.Uploads.AllowedExtensions, cfg.Uploads.AllowedMIMETypes, cfg.Uploads.MaxBytes),
			Paths:     upload.Paths{CoaDir: cfg.Uploads.CoaDir, ColorDir: cfg.Uploads.ColorDir},
		},
	})
	if err != nil {
		applog.Error(ctx, "failed to create server", "error", err)
		return 1
	}

	shutdown, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr, "storage", cfg.Storage.Backend)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-shutdown:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server encountered an error", "error", err)
		return 1
	}
	return 0
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.UseMock || cfg.URL == "" {
		applog.Info(ctx, "using in-memory mock database")
		return newMockDatabaseFunc(ctx)
	}
	return configureDatabase(cfg)
}
