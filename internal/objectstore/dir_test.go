package objectstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"assetsync/internal/objectstore"
	"assetsync/internal/services"
)

func TestDirPutGetDelete(t *testing.T) {
	root := t.TempDir()
	store, err := objectstore.NewDir(root)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "static/report.pdf", []byte("pdf"), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "static", "report.pdf")); err != nil {
		t.Fatalf("expected object on disk: %v", err)
	}
	data, err := store.Get(ctx, "static/report.pdf")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "pdf" {
		t.Fatalf("unexpected data %q", data)
	}

	if err := store.Put(ctx, "static/report.pdf", []byte("v2"), ""); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if data, _ := store.Get(ctx, "static/report.pdf"); string(data) != "v2" {
		t.Fatalf("expected overwrite, got %q", data)
	}

	if err := store.Delete(ctx, "static/report.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "static/report.pdf"); err != nil {
		t.Fatalf("Delete of missing key should succeed: %v", err)
	}
	_, err = store.Get(ctx, "static/report.pdf")
	if !errors.Is(err, objectstore.ErrNotFound) || !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected not-found storage error, got %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "static"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestDirRejectsEscapingKeys(t *testing.T) {
	store, err := objectstore.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	for _, key := range []string{"", "/abs.png", "../outside.png", "a/../../outside.png", ".."} {
		if err := store.Put(context.Background(), key, []byte("x"), ""); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Put(%q): expected validation error, got %v", key, err)
		}
	}
}

func TestDirHonoursCancelledContext(t *testing.T) {
	store, err := objectstore.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Put(ctx, "a.png", []byte("x"), ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
