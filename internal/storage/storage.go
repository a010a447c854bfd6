// Package storage keeps uploaded batch attachments.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrNotFound   = errors.New("storage: object not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Storage saves and retrieves blobs by slash separated key.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Backend names.
const (
	BackendFileSystem = "fs"
	BackendS3         = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Root    string
	S3      S3Config
}

// New builds the configured backend.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFileSystem:
		return NewFileSystem(cfg.Root)
	case BackendS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.Contains(key, "\x00") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(strings.ReplaceAll(key, "\\", "/"), "/") {
		if part == ".." {
			return ErrInvalidKey
		}
	}
	if strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}
