package metadata

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"assetsync/internal/config"
	"assetsync/internal/fileutil"
	"assetsync/internal/services"
)

// DateLayout is the timestamp layout written into the date field.
const DateLayout = "2006-01-02 15:04:05 -0700"

// ImageRecord is the writer input for an image sidecar.
type ImageRecord struct {
	UID    string
	Width  int
	Height int
	Format string
}

// FileRecord is the writer input for a generic file sidecar.
type FileRecord struct {
	UID    string
	Format string
}

// Writer persists sidecar records. Existing records for the same uid are
// overwritten.
type Writer struct {
	ImagesDir string
	FilesDir  string
	// ImageURL and StaticURL build the public URL comment from "<uid>.<format>".
	ImageURL  func(name string) string
	StaticURL func(name string) string
	Now       func() time.Time
}

// NewWriter returns a Writer bound to the configured directories and URLs.
func NewWriter(cfg *config.Config) *Writer {
	return &Writer{
		ImagesDir: cfg.Paths.ImageMetadataDir,
		FilesDir:  cfg.Paths.FileMetadataDir,
		ImageURL:  cfg.ImageURL,
		StaticURL: cfg.StaticURL,
		Now:       time.Now,
	}
}

// WriteImage writes <ImagesDir>/<uid>.yml and returns its path.
func (w *Writer) WriteImage(rec ImageRecord) (string, error) {
	if err := validateIdentity(rec.UID, rec.Format); err != nil {
		return "", err
	}
	if rec.Width <= 0 || rec.Height <= 0 {
		return "", services.Wrap(services.ErrValidation, "metadata", "write image",
			fmt.Sprintf("uid %q has zero dimension %dx%d", rec.UID, rec.Width, rec.Height), nil)
	}
	name := rec.UID + "." + rec.Format
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "# %s\n", w.url(w.ImageURL, name))
	fmt.Fprintf(&b, "# Image shortcode: {{ img src=\"%s\" }}\n", rec.UID)
	writeField(&b, "date", w.now().Format(DateLayout))
	writeField(&b, "uid", rec.UID)
	writeField(&b, "width", fmt.Sprint(rec.Width))
	writeField(&b, "height", fmt.Sprint(rec.Height))
	writeField(&b, "format", rec.Format)
	b.WriteString("\n# REQUIRED alternative text for accessibility.\n")
	b.WriteString("# Keep within 150 characters.\n")
	writeField(&b, "alt", `""`)
	b.WriteString("\n# Caption text appears below the image; usually the attribution for stock images.\n")
	b.WriteString("# Must be different from the alt text.\n")
	writeField(&b, "caption", `""`)
	b.WriteString("\n# Credit text appears after the caption text, separated by an m-dash.\n")
	writeField(&b, "credit", `""`)

	return w.write(w.ImagesDir, rec.UID, b.String())
}

// WriteFile writes <FilesDir>/<uid>.yml and returns its path.
func (w *Writer) WriteFile(rec FileRecord) (string, error) {
	if err := validateIdentity(rec.UID, rec.Format); err != nil {
		return "", err
	}
	name := rec.UID + "." + rec.Format
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "# %s\n", w.url(w.StaticURL, name))
	fmt.Fprintf(&b, "# File shortcode: {{ asset-static file=\"%s\" label=\"%s (%s)\" }}\n", name, rec.UID, rec.Format)
	writeField(&b, "date", w.now().Format(DateLayout))
	writeField(&b, "uid", rec.UID)
	writeField(&b, "format", rec.Format)

	return w.write(w.FilesDir, rec.UID, b.String())
}

func (w *Writer) write(dir, uid, body string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", services.Wrap(services.ErrConfiguration, "metadata", "write", "metadata directory not configured", nil)
	}
	path := filepath.Join(dir, uid+".yml")
	if err := fileutil.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
		return "", services.Wrap(services.ErrIO, "metadata", "write", path, err)
	}
	return path, nil
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

func (w *Writer) url(build func(string) string, name string) string {
	if build == nil {
		return name
	}
	return build(name)
}

// writeField emits "key<pad>:  value" with keys aligned to nine columns.
func writeField(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%-9s:  %s\n", key, value)
}

func validateIdentity(uid, format string) error {
	if strings.TrimSpace(uid) == "" {
		return services.Wrap(services.ErrValidation, "metadata", "write", "empty uid", nil)
	}
	if strings.ContainsAny(uid, `/\`) {
		return services.Wrap(services.ErrValidation, "metadata", "write", fmt.Sprintf("uid %q contains a path separator", uid), nil)
	}
	if strings.TrimSpace(format) == "" {
		return services.Wrap(services.ErrValidation, "metadata", "write", fmt.Sprintf("uid %q has no format", uid), nil)
	}
	return nil
}
