package objectstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"assetsync/internal/objectstore"
	"assetsync/internal/services"
)

type blockingStore struct{}

func (blockingStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingStore) Get(ctx context.Context, key string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) Delete(ctx context.Context, key string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestWithTimeoutBoundsEveryCall(t *testing.T) {
	store := objectstore.WithTimeout(blockingStore{}, 20*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	err := store.Put(ctx, "a.png", []byte("x"), "image/png")
	if !errors.Is(err, services.ErrStorage) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected storage timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout did not fire promptly: %s", elapsed)
	}
	if _, err := store.Get(ctx, "a.png"); !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage timeout on Get, got %v", err)
	}
	if err := store.Delete(ctx, "a.png"); !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage timeout on Delete, got %v", err)
	}
}

func TestWithTimeoutPassesThroughFastCalls(t *testing.T) {
	dir, err := objectstore.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	store := objectstore.WithTimeout(dir, time.Minute)
	if err := store.Put(context.Background(), "k.txt", []byte("v"), "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := store.Get(context.Background(), "k.txt")
	if err != nil || string(data) != "v" {
		t.Fatalf("Get = %q, %v", data, err)
	}
	if objectstore.WithTimeout(dir, 0) != objectstore.Store(dir) {
		t.Fatal("expected zero timeout to return the inner store")
	}
}
