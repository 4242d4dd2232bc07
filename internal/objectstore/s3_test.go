package objectstore_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"assetsync/internal/objectstore"
	"assetsync/internal/services"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	headers map[string]http.Header
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[path] = body
		f.headers[path] = r.Header.Clone()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	case http.MethodDelete:
		delete(f.objects, path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3Store(t *testing.T, publicRead bool) (*objectstore.S3, *fakeS3) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", "")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "")
	fake := &fakeS3{objects: map[string][]byte{}, headers: map[string]http.Header{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := objectstore.NewS3(context.Background(), objectstore.S3Options{
		Bucket:          "digitalgov",
		Region:          "us-east-1",
		Endpoint:        server.URL,
		UsePathStyle:    true,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		PublicRead:      publicRead,
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	return store, fake
}

func TestS3PutSetsContentTypeAndACL(t *testing.T) {
	store, fake := newFakeS3Store(t, true)
	ctx := context.Background()
	if err := store.Put(ctx, "my-photo_w200.png", []byte("pixels"), "image/png"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	fake.mu.Lock()
	body := fake.objects["digitalgov/my-photo_w200.png"]
	header := fake.headers["digitalgov/my-photo_w200.png"]
	fake.mu.Unlock()
	if string(body) != "pixels" {
		t.Fatalf("unexpected body %q", body)
	}
	if got := header.Get("Content-Type"); got != "image/png" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := header.Get("X-Amz-Acl"); got != "public-read" {
		t.Fatalf("unexpected acl header %q", got)
	}
}

func TestS3PrivatePutOmitsACL(t *testing.T) {
	store, fake := newFakeS3Store(t, false)
	if err := store.Put(context.Background(), "static/a.pdf", []byte("x"), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if got := fake.headers["digitalgov/static/a.pdf"].Get("X-Amz-Acl"); got != "" {
		t.Fatalf("expected no acl header, got %q", got)
	}
}

func TestS3GetAndNotFound(t *testing.T) {
	store, fake := newFakeS3Store(t, true)
	fake.objects["digitalgov/photo.png"] = []byte("png-bytes")
	ctx := context.Background()

	data, err := store.Get(ctx, "photo.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected data %q", data)
	}

	_, err = store.Get(ctx, "missing.png")
	if !errors.Is(err, objectstore.ErrNotFound) || !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected not-found storage error, got %v", err)
	}

	if err := store.Delete(ctx, "photo.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	fake.mu.Lock()
	_, still := fake.objects["digitalgov/photo.png"]
	fake.mu.Unlock()
	if still {
		t.Fatal("expected object to be deleted")
	}
}
