package objectstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assetsync/internal/services"
)

type timeoutStore struct {
	inner   Store
	timeout time.Duration
}

// WithTimeout bounds each call to inner by timeout. A non-positive timeout
// returns inner unchanged.
func WithTimeout(inner Store, timeout time.Duration) Store {
	if timeout <= 0 || inner == nil {
		return inner
	}
	return &timeoutStore{inner: inner, timeout: timeout}
}

func (s *timeoutStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.classify(callCtx, "put", key, s.inner.Put(callCtx, key, data, contentType))
}

func (s *timeoutStore) Get(ctx context.Context, key string) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	data, err := s.inner.Get(callCtx, key)
	if err != nil {
		return nil, s.classify(callCtx, "get", key, err)
	}
	return data, nil
}

func (s *timeoutStore) Delete(ctx context.Context, key string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.classify(callCtx, "delete", key, s.inner.Delete(callCtx, key))
}

// classify tags deadline expiry as a storage failure so callers treat it like
// any other per-file store error.
func (s *timeoutStore) classify(ctx context.Context, op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, services.ErrStorage) {
		return services.Wrap(services.ErrStorage, "objectstore", op,
			fmt.Sprintf("key %q timed out after %s", key, s.timeout), err)
	}
	return err
}
