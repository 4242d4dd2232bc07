package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	data := bytes.Repeat([]byte{0x42}, int(size))
	writeBytes(t, path, data)
}

// Pattern returns a deterministic w x h test image.
func Pattern(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8((x + y) * 3), A: 255})
		}
	}
	return img
}

// WritePNG writes a w x h PNG fixture.
func WritePNG(t testing.TB, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, Pattern(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	writeBytes(t, path, buf.Bytes())
}

// WriteJPEG writes a w x h JPEG fixture.
func WriteJPEG(t testing.TB, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Pattern(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	writeBytes(t, path, buf.Bytes())
}

// WriteImage writes a w x h fixture in the format named by ext (png, jpg,
// jpeg, gif, bmp, tiff or webp).
func WriteImage(t testing.TB, path, ext string, w, h int) {
	t.Helper()
	img := Pattern(w, h)
	var buf bytes.Buffer
	var err error
	switch ext {
	case "png":
		err = png.Encode(&buf, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	case "webp":
		err = nativewebp.Encode(&buf, img, nil)
	default:
		t.Fatalf("no fixture encoder for %q", ext)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", ext, err)
	}
	writeBytes(t, path, buf.Bytes())
}

// WriteCorruptImage writes bytes that no image decoder accepts.
func WriteCorruptImage(t testing.TB, path string) {
	t.Helper()
	writeBytes(t, path, []byte("\x89PNG\r\n\x1a\nthis is not really a png"))
}

// DecodeImage decodes an image file and fails the test on error.
func DecodeImage(t testing.TB, data []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode image: %v", err)
	}
	return img
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
