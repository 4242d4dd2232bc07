// Package objectstore abstracts the bucket the pipeline publishes into. It
// provides S3 (aws-sdk-go-v2), Aliyun OSS, and local-directory backends behind
// one narrow Store interface, plus a decorator that bounds every call with a
// timeout.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"assetsync/internal/config"
	"assetsync/internal/services"
)

// Store is the capability the pipeline and mirror need from a bucket. Keys are
// slash-separated and never start with "/".
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ErrNotFound marks a Get for a key the backend does not hold. It is always
// wrapped together with services.ErrStorage.
var ErrNotFound = errors.New("object not found")

// Open builds the backend selected by cfg.Store.Backend and wraps it with the
// configured per-call timeout.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "objectstore", "open", "config is nil", nil)
	}
	if err := cfg.ValidateRemote(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "objectstore", "open", "store settings", err)
	}
	var (
		store Store
		err   error
	)
	switch cfg.Store.Backend {
	case config.BackendS3:
		store, err = NewS3(ctx, S3Options{
			Bucket:          cfg.Store.Bucket,
			Region:          cfg.Store.Region,
			Endpoint:        cfg.Store.Endpoint,
			UsePathStyle:    cfg.Store.UsePathStyle,
			AccessKeyID:     cfg.Store.AccessKeyID,
			SecretAccessKey: cfg.Store.SecretAccessKey,
			PublicRead:      cfg.Store.PublicRead,
		})
	case config.BackendOSS:
		store, err = NewOSS(OSSOptions{
			Bucket:          cfg.Store.Bucket,
			Region:          cfg.Store.Region,
			Endpoint:        cfg.Store.Endpoint,
			AccessKeyID:     cfg.Store.AccessKeyID,
			AccessKeySecret: cfg.Store.SecretAccessKey,
			PublicRead:      cfg.Store.PublicRead,
		})
	case config.BackendDir:
		store, err = NewDir(cfg.Store.Dir)
	default:
		err = services.Wrap(services.ErrConfiguration, "objectstore", "open",
			fmt.Sprintf("unknown backend %q", cfg.Store.Backend), nil)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(store, cfg.RequestTimeout()), nil
}

// Describe returns a short human label for logs, e.g. "s3://bucket".
func Describe(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	switch cfg.Store.Backend {
	case config.BackendDir:
		return "dir://" + cfg.Store.Dir
	default:
		return cfg.Store.Backend + "://" + cfg.Store.Bucket
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return services.Wrap(services.ErrValidation, "objectstore", "key", "empty object key", nil)
	}
	if strings.HasPrefix(key, "/") {
		return services.Wrap(services.ErrValidation, "objectstore", "key", fmt.Sprintf("object key %q must be relative", key), nil)
	}
	return nil
}

func notFound(backend, key string) error {
	return services.Wrap(services.ErrStorage, backend, "get", fmt.Sprintf("key %q", key), ErrNotFound)
}
