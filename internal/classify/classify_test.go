package classify_test

import (
	"strings"
	"testing"

	"assetsync/internal/classify"
)

func TestIsImage(t *testing.T) {
	images := []string{"a.png", "B.JPG", "c.jpeg", "d.Gif", "e.bmp", "f.TIFF", "g.webp", "/x/y/z.PNG"}
	for _, name := range images {
		if !classify.IsImage(name) {
			t.Fatalf("expected %q to be an image", name)
		}
	}
	for _, name := range []string{"a.pdf", "a.tif", "png", ".png", "a.png.txt", "a."} {
		if classify.IsImage(name) {
			t.Fatalf("did not expect %q to be an image", name)
		}
	}
}

func TestIsValidFileType(t *testing.T) {
	valid := []string{"r.doc", "r.DOCX", "r.pdf", "r.txt", "r.rtf", "r.xls", "r.xlsx", "r.csv",
		"r.ppt", "r.pptx", "r.zip", "r.rar", "r.7z", "r.png", "r.webp"}
	for _, name := range valid {
		if !classify.IsValidFileType(name) {
			t.Fatalf("expected %q to be valid", name)
		}
	}
	for _, name := range []string{"r.exe", "r.mp4", "r", "r.svg", "__add image or static files to this folder__"} {
		if classify.IsValidFileType(name) {
			t.Fatalf("did not expect %q to be valid", name)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]classify.Kind{
		"photo.jpg":  classify.KindImage,
		"report.pdf": classify.KindFile,
		"movie.mov":  classify.KindInvalid,
	}
	for name, want := range cases {
		if got := classify.Classify(name); got != want {
			t.Fatalf("Classify(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestStemAndExt(t *testing.T) {
	cases := []struct{ name, stem, ext string }{
		{"my-photo.png", "my-photo", "png"},
		{"archive.tar.GZ", "archive.tar", "gz"},
		{"noext", "noext", ""},
		{".env", ".env", ""},
		{"trailing.", "trailing.", ""},
		{"/dir/file.PDF", "file", "pdf"},
	}
	for _, tc := range cases {
		if got := classify.Stem(tc.name); got != tc.stem {
			t.Fatalf("Stem(%q) = %q, want %q", tc.name, got, tc.stem)
		}
		if got := classify.Ext(tc.name); got != tc.ext {
			t.Fatalf("Ext(%q) = %q, want %q", tc.name, got, tc.ext)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"My Photo.JPG":          "my-photo.jpg",
		"Report (final) v2.pdf": "report-final-v2.pdf",
		"résumé.docx":           "rsum.docx",
		"already_ok-1.png":      "already_ok-1.png",
		"":                      "",
		"$$$":                   "",
		"Tab\tName.txt":         "tabname.txt",
	}
	for in, want := range cases {
		if got := classify.SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeFilenameIdempotentAndAlphabet(t *testing.T) {
	inputs := []string{
		"My Photo.JPG", "ÄÖÜ äöü ß.png", "日本語 ファイル.pdf", "a/b\\c:d*e?.txt",
		"  spaced  out  ", "MiXeD_CaSe-123.Zip", "Kelvin.png", "emoji 😀.gif",
	}
	for _, in := range inputs {
		once := classify.SanitizeFilename(in)
		if twice := classify.SanitizeFilename(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
		if strings.Trim(once, "abcdefghijklmnopqrstuvwxyz0123456789-_.") != "" {
			t.Fatalf("sanitized %q contains characters outside the allowed set: %q", in, once)
		}
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"png":  "image/png",
		"JPG":  "image/jpeg",
		".pdf": "application/pdf",
		"7z":   "application/x-7z-compressed",
		"":     "application/octet-stream",
		"zzz9": "application/octet-stream",
	}
	for in, want := range cases {
		if got := classify.ContentType(in); got != want {
			t.Fatalf("ContentType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectContentTypeSniffsUnknownExtensions(t *testing.T) {
	pdf := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	if got := classify.DetectContentType("upload.bin9", pdf); got != "application/pdf" {
		t.Fatalf("expected sniffed pdf, got %q", got)
	}
	if got := classify.DetectContentType("photo.png", nil); got != "image/png" {
		t.Fatalf("expected table lookup to win, got %q", got)
	}
	if got := classify.DetectContentType("empty.bin9", nil); got != "application/octet-stream" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
