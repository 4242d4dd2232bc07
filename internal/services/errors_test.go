package services_test

import (
	"errors"
	"strings"
	"testing"

	"assetsync/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrStorage, "publish", "upload", "put original", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"publish", "upload", "put original", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "variants", "", "zero width", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if got := err.Error(); got != "validation error: variants: zero width" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapNilMarkerDefaultsToIO(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrStorage, "s3", "put", "", nil), "storage"},
		{services.Wrap(services.ErrCodec, "codec", "decode", "", nil), "codec"},
		{services.Wrap(services.ErrValidation, "classify", "", "", nil), "validation"},
		{services.Wrap(services.ErrConfiguration, "config", "", "", nil), "configuration"},
		{services.Wrap(services.ErrIO, "staging", "move", "", nil), "io"},
		{errors.New("plain"), "unknown"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
	details := services.Details(services.Wrap(services.ErrCodec, "codec", "encode", "png", nil))
	if details.Kind != "codec" || !strings.Contains(details.Message, "png") {
		t.Fatalf("unexpected details %+v", details)
	}
}
