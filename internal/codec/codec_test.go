package codec_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"assetsync/internal/codec"
	"assetsync/internal/services"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestRoundTripAllEncodableFormats(t *testing.T) {
	c := codec.NewImaging()
	src := gradient(30, 20)
	for _, format := range []string{"png", "jpg", "jpeg", "gif", "bmp", "tiff", "webp", ".PNG"} {
		data, err := c.Encode(src, format)
		if err != nil {
			t.Fatalf("Encode(%s): %v", format, err)
		}
		decoded, err := c.Decode(data)
		if err != nil {
			t.Fatalf("Decode(%s): %v", format, err)
		}
		if b := decoded.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
			t.Fatalf("%s: unexpected bounds %v", format, b)
		}
	}
}

func TestResizeProducesExactDimensions(t *testing.T) {
	c := codec.NewImaging()
	resized, err := c.Resize(gradient(300, 150), 200, 100)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if b := resized.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("unexpected bounds %v", b)
	}
	up, err := c.Resize(gradient(300, 150), 1200, 600)
	if err != nil {
		t.Fatalf("Resize upscale: %v", err)
	}
	if b := up.Bounds(); b.Dx() != 1200 || b.Dy() != 600 {
		t.Fatalf("unexpected upscaled bounds %v", b)
	}
}

func TestResizeRejectsInvalidInput(t *testing.T) {
	c := codec.NewImaging()
	if _, err := c.Resize(gradient(10, 10), 0, 5); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := c.Resize(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 5, 5); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty source, got %v", err)
	}
}

func TestDecodeRejectsCorruptData(t *testing.T) {
	c := codec.NewImaging()
	for _, data := range [][]byte{nil, []byte("definitely not an image")} {
		if _, err := c.Decode(data); !errors.Is(err, services.ErrCodec) {
			t.Fatalf("expected codec error, got %v", err)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, gradient(8, 8)); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()/2]
	if _, err := c.Decode(truncated); !errors.Is(err, services.ErrCodec) {
		t.Fatalf("expected codec error for truncated png, got %v", err)
	}
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	c := codec.NewImaging()
	if _, err := c.Encode(gradient(4, 4), "heic"); !errors.Is(err, services.ErrCodec) {
		t.Fatalf("expected codec error, got %v", err)
	}
}

func TestWebPEncodeIsLossless(t *testing.T) {
	c := codec.NewImaging()
	src := gradient(16, 9)
	data, err := c.Encode(src, "WEBP")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WEBP")) {
		t.Fatalf("output is not a WebP container: % x", data[:12])
	}
	decoded, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			wr, wg, wb, wa := src.At(x, y).RGBA()
			gr, gg, gb, ga := decoded.At(x, y).RGBA()
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d) changed: got %v want %v", x, y, decoded.At(x, y), src.At(x, y))
			}
		}
	}
}
