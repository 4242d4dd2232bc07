// Package classify decides which inbox files the pipeline accepts, whether
// they are images or generic static files, and how their names are normalized
// into object keys.
package classify

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind distinguishes images, which get variants and dimension metadata, from
// generic static files.
type Kind string

const (
	KindImage Kind = "image"
	KindFile  Kind = "file"
	// KindInvalid marks files the pipeline never touches.
	KindInvalid Kind = ""
)

var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "bmp": {}, "tiff": {}, "webp": {},
}

var documentExtensions = map[string]struct{}{
	"doc": {}, "docx": {}, "pdf": {}, "txt": {}, "rtf": {},
	"xls": {}, "xlsx": {}, "csv": {}, "ppt": {}, "pptx": {},
	"zip": {}, "rar": {}, "7z": {},
}

// contentTypes covers every accepted extension so uploads do not depend on the
// host's mime.types database.
var contentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"webp": "image/webp",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"pdf":  "application/pdf",
	"txt":  "text/plain; charset=utf-8",
	"rtf":  "application/rtf",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"csv":  "text/csv",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"zip":  "application/zip",
	"rar":  "application/vnd.rar",
	"7z":   "application/x-7z-compressed",
}

const fallbackContentType = "application/octet-stream"

// Ext returns the lowercased extension of name without the dot. Names with no
// dot, a trailing dot, or only a leading dot (".env") have no extension.
func Ext(name string) string {
	base := filepath.Base(name)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// Stem returns the base name without its extension, as defined by Ext.
func Stem(name string) string {
	base := filepath.Base(name)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return base
	}
	return base[:idx]
}

// IsImage reports whether path has one of the accepted raster extensions.
func IsImage(path string) bool {
	_, ok := imageExtensions[Ext(path)]
	return ok
}

// IsValidFileType reports whether the pipeline accepts path at all.
func IsValidFileType(path string) bool {
	if IsImage(path) {
		return true
	}
	_, ok := documentExtensions[Ext(path)]
	return ok
}

// Classify returns the Kind for path.
func Classify(path string) Kind {
	switch {
	case IsImage(path):
		return KindImage
	case IsValidFileType(path):
		return KindFile
	default:
		return KindInvalid
	}
}

// IsJPEG reports whether path is a JPEG that gets normalized to PNG.
func IsJPEG(path string) bool {
	ext := Ext(path)
	return ext == "jpg" || ext == "jpeg"
}

// SanitizeFilename lowercases name, turns spaces into hyphens, and drops every
// character outside [a-z0-9-_.]. The result is ASCII-only and applying it twice
// changes nothing.
func SanitizeFilename(name string) string {
	lowered := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ContentType resolves the upload MIME type for an extension (without dot).
func ContentType(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ext != "" {
		if ct := mime.TypeByExtension("." + ext); ct != "" {
			return ct
		}
	}
	return fallbackContentType
}

// DetectContentType resolves the MIME type for name, sniffing data when the
// extension is unknown.
func DetectContentType(name string, data []byte) string {
	if ct := ContentType(Ext(name)); ct != fallbackContentType {
		return ct
	}
	if len(data) == 0 {
		return fallbackContentType
	}
	return mimetype.Detect(data).String()
}
