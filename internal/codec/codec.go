// Package codec decodes, resizes, and re-encodes raster images for the publish
// pipeline. The production implementation wraps github.com/disintegration/imaging;
// tests may substitute any ImageCodec.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"assetsync/internal/services"
)

// ImageCodec is the capability the pipeline needs from an image library.
type ImageCodec interface {
	Decode(data []byte) (image.Image, error)
	Encode(img image.Image, format string) ([]byte, error)
	Resize(img image.Image, width, height int) (image.Image, error)
}

// Imaging implements ImageCodec with disintegration/imaging. Resizing always
// uses the Catmull-Rom cubic filter.
type Imaging struct {
	// JPEGQuality applies to jpg/jpeg encodes; 0 means imaging's default (95).
	JPEGQuality int
	// AutoOrient rotates decoded JPEGs according to their EXIF orientation tag.
	AutoOrient bool
}

// NewImaging returns the default codec.
func NewImaging() *Imaging {
	return &Imaging{}
}

var encodable = map[string]imaging.Format{
	"png":  imaging.PNG,
	"jpg":  imaging.JPEG,
	"jpeg": imaging.JPEG,
	"gif":  imaging.GIF,
	"bmp":  imaging.BMP,
	"tiff": imaging.TIFF,
}

// formatWebP is encoded losslessly by nativewebp; imaging has no WebP encoder.
const formatWebP = "webp"

// Decode parses any registered format (png, jpeg, gif, bmp, tiff, webp).
func (c *Imaging) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrCodec, "codec", "decode", "empty image data", nil)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(c.AutoOrient))
	if err != nil {
		return nil, services.Wrap(services.ErrCodec, "codec", "decode", "decode image", err)
	}
	return img, nil
}

// Encode serializes img in the format named by an extension such as "png".
func (c *Imaging) Encode(img image.Image, format string) ([]byte, error) {
	if img == nil {
		return nil, services.Wrap(services.ErrCodec, "codec", "encode", "nil image", nil)
	}
	name := normalizeFormat(format)
	var buf bytes.Buffer
	if name == formatWebP {
		if err := nativewebp.Encode(&buf, img, nil); err != nil {
			return nil, services.Wrap(services.ErrCodec, "codec", "encode", "encode WEBP", err)
		}
		return buf.Bytes(), nil
	}
	target, ok := encodable[name]
	if !ok {
		return nil, services.Wrap(services.ErrCodec, "codec", "encode", fmt.Sprintf("no encoder for format %q", format), nil)
	}
	var opts []imaging.EncodeOption
	if target == imaging.JPEG && c.JPEGQuality > 0 {
		opts = append(opts, imaging.JPEGQuality(c.JPEGQuality))
	}
	if err := imaging.Encode(&buf, img, target, opts...); err != nil {
		return nil, services.Wrap(services.ErrCodec, "codec", "encode", "encode "+target.String(), err)
	}
	return buf.Bytes(), nil
}

// Resize scales img to exactly width x height.
func (c *Imaging) Resize(img image.Image, width, height int) (image.Image, error) {
	if img == nil {
		return nil, services.Wrap(services.ErrCodec, "codec", "resize", "nil image", nil)
	}
	if width <= 0 || height <= 0 {
		return nil, services.Wrap(services.ErrValidation, "codec", "resize",
			fmt.Sprintf("invalid target size %dx%d", width, height), nil)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, services.Wrap(services.ErrValidation, "codec", "resize", "source image is empty", nil)
	}
	return imaging.Resize(img, width, height, imaging.CatmullRom), nil
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}
