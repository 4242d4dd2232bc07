package metadata_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"assetsync/internal/classify"
	"assetsync/internal/metadata"
	"assetsync/internal/services"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 6, 0, time.FixedZone("EDT", -4*3600))

func newWriter(t *testing.T) *metadata.Writer {
	t.Helper()
	root := t.TempDir()
	return &metadata.Writer{
		ImagesDir: filepath.Join(root, "data", "images"),
		FilesDir:  filepath.Join(root, "data", "files"),
		ImageURL:  func(name string) string { return "https://s3.amazonaws.com/digitalgov/" + name },
		StaticURL: func(name string) string { return "https://s3.amazonaws.com/digitalgov/static/" + name },
		Now:       func() time.Time { return fixedNow },
	}
}

func TestWriteImageRendersSchema(t *testing.T) {
	w := newWriter(t)
	path, err := w.WriteImage(metadata.ImageRecord{UID: "my-photo", Width: 300, Height: 150, Format: "png"})
	if err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	if path != filepath.Join(w.ImagesDir, "my-photo.yml") {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"# https://s3.amazonaws.com/digitalgov/my-photo.png\n",
		`# Image shortcode: {{ img src="my-photo" }}`,
		"date     :  2024-03-09 14:05:06 -0400\n",
		"uid      :  my-photo\n",
		"width    :  300\n",
		"height   :  150\n",
		"format   :  png\n",
		"alt      :  \"\"\n",
		"caption  :  \"\"\n",
		"credit   :  \"\"\n",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("record missing %q:\n%s", want, text)
		}
	}
	order := []string{"date", "uid", "width", "height", "format", "alt", "caption", "credit"}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, "\n"+key+" ")
		if idx <= last {
			t.Fatalf("field %q out of order in:\n%s", key, text)
		}
		last = idx
	}
}

func TestWriteFileRendersSchemaAndOverwrites(t *testing.T) {
	w := newWriter(t)
	if _, err := w.WriteFile(metadata.FileRecord{UID: "report", Format: "pdf"}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	w.Now = func() time.Time { return fixedNow.Add(time.Hour) }
	path, err := w.WriteFile(metadata.FileRecord{UID: "report", Format: "pdf"})
	if err != nil {
		t.Fatalf("second WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "# https://s3.amazonaws.com/digitalgov/static/report.pdf\n") {
		t.Fatalf("missing url comment:\n%s", text)
	}
	if !strings.Contains(text, `# File shortcode: {{ asset-static file="report.pdf" label="report (pdf)" }}`+"\n") {
		t.Fatalf("missing shortcode comment:\n%s", text)
	}
	if !strings.Contains(text, "date     :  2024-03-09 15:05:06 -0400\n") {
		t.Fatalf("expected overwritten date:\n%s", text)
	}
	if strings.Contains(text, "width") || strings.Contains(text, "alt") {
		t.Fatalf("file record should not carry image fields:\n%s", text)
	}
}

func TestWriterValidatesInput(t *testing.T) {
	w := newWriter(t)
	cases := []metadata.ImageRecord{
		{UID: "", Width: 1, Height: 1, Format: "png"},
		{UID: "a", Width: 1, Height: 1, Format: ""},
		{UID: "a", Width: 0, Height: 1, Format: "png"},
		{UID: "../escape", Width: 1, Height: 1, Format: "png"},
	}
	for _, rec := range cases {
		if _, err := w.WriteImage(rec); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("WriteImage(%+v): expected validation error, got %v", rec, err)
		}
	}
}

func writeRecord(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReaderSkipsRecordsMissingFormat(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "a.yml", "uid: alpha\nformat: png\n")
	writeRecord(t, dir, "b.yml", "# format: jpg\nuid: beta\n")
	writeRecord(t, dir, "c.yml", "uid      :  \"gamma\"\nformat   :  'gif'  \n")
	writeRecord(t, dir, "d.txt", "uid: delta\nformat: png\n")
	writeRecord(t, dir, "e.yml", "uid: epsilon\nformat:\n")
	if err := os.MkdirAll(filepath.Join(dir, "nested.yml"), 0o755); err != nil {
		t.Fatal(err)
	}

	reader := &metadata.Reader{Dir: dir, ImagePrefix: ""}
	entries := reader.ImageEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[0].Key != "alpha.png" || entries[0].UID != "alpha" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Key != "gamma.gif" || entries[1].Format != "gif" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestReaderRoundTripsWriterOutput(t *testing.T) {
	w := newWriter(t)
	for _, uid := range []string{"one", "two"} {
		if _, err := w.WriteImage(metadata.ImageRecord{UID: uid, Width: 10, Height: 5, Format: "png"}); err != nil {
			t.Fatalf("WriteImage: %v", err)
		}
	}
	reader := &metadata.Reader{Dir: w.ImagesDir, ImagePrefix: "img/"}
	entries := reader.ImageEntries()
	if len(entries) != 2 || entries[0].Key != "img/one.png" || entries[1].Key != "img/two.png" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestReaderMissingDirectory(t *testing.T) {
	reader := &metadata.Reader{Dir: filepath.Join(t.TempDir(), "missing")}
	if entries := reader.ImageEntries(); len(entries) != 0 {
		t.Fatalf("expected no entries, got %+v", entries)
	}
}

func TestScanFieldsIgnoresIndentedAndCommentLines(t *testing.T) {
	data := []byte("# uid: comment\nnested:\n  uid: inner\nuid: outer # trailing\nuid: second\n")
	fields := metadata.ScanFields(data, "uid", "format")
	if fields["uid"] != "outer" {
		t.Fatalf("unexpected uid %q", fields["uid"])
	}
	if _, ok := fields["format"]; ok {
		t.Fatal("did not expect a format field")
	}
}

func TestLoadRecordsDecodesWriterOutput(t *testing.T) {
	w := newWriter(t)
	if _, err := w.WriteImage(metadata.ImageRecord{UID: "zeta", Width: 640, Height: 480, Format: "png"}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteImage(metadata.ImageRecord{UID: "123", Width: 1, Height: 2, Format: "gif"}); err != nil {
		t.Fatal(err)
	}
	writeRecord(t, w.ImagesDir, "broken.yml", "uid: [unterminated\n")

	records, bad, err := metadata.LoadRecords(w.ImagesDir, classify.KindImage)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(bad) != 1 || !strings.HasSuffix(bad[0].Path, "broken.yml") {
		t.Fatalf("expected one bad record, got %+v", bad)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %+v", records)
	}
	if records[0].UID != "123" || records[1].UID != "zeta" {
		t.Fatalf("expected records sorted by uid, got %q, %q", records[0].UID, records[1].UID)
	}
	zeta := records[1]
	if zeta.Width != 640 || zeta.Height != 480 || zeta.Format != "png" || zeta.Kind != classify.KindImage {
		t.Fatalf("unexpected record %+v", zeta)
	}
	if zeta.Date != "2024-03-09 14:05:06 -0400" {
		t.Fatalf("unexpected date %q", zeta.Date)
	}

	none, _, err := metadata.LoadRecords(filepath.Join(t.TempDir(), "missing"), classify.KindFile)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result for missing dir, got %v %v", none, err)
	}
}
