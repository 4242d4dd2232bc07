package metadata

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"assetsync/internal/logging"
)

// MirrorEntry identifies one published image to download.
type MirrorEntry struct {
	Key    string
	UID    string
	Format string
	Source string
}

// Reader enumerates image records for mirror sync.
type Reader struct {
	Dir         string
	ImagePrefix string
	Logger      *slog.Logger
}

// ImageEntries returns one entry per *.yml record in Dir (non-recursive, in
// lexical order). Records without a uid or format are skipped silently;
// unreadable records are logged and skipped. A missing directory is logged and
// yields no entries.
func (r *Reader) ImageEntries() []MirrorEntry {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("image metadata directory not found; nothing to mirror",
				logging.String("dir", r.Dir),
				logging.String(logging.FieldEventType, "metadata_dir_missing"),
			)
		} else {
			logging.WarnWithContext(logger, "image metadata directory unreadable", "metadata_dir_unreadable",
				logging.String("dir", r.Dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the image metadata directory"),
				logging.String(logging.FieldImpact, "no images will be mirrored"),
			)
		}
		return nil
	}

	var out []MirrorEntry
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yml" {
			continue
		}
		path := filepath.Join(r.Dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logging.WarnWithContext(logger, "metadata record unreadable; skipping", "metadata_unreadable",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "image will not be mirrored"),
			)
			continue
		}
		fields := ScanFields(data, "uid", "format")
		uid, format := fields["uid"], fields["format"]
		if uid == "" || format == "" {
			logger.Debug("metadata record missing uid or format; skipping",
				logging.String("path", path),
			)
			continue
		}
		out = append(out, MirrorEntry{
			Key:    r.ImagePrefix + uid + "." + format,
			UID:    uid,
			Format: format,
			Source: path,
		})
	}
	return out
}

// ScanFields extracts top-level "key: value" pairs for the requested keys
// without a full YAML parse. Keys must start the line; comment lines are
// ignored; surrounding quotes and trailing comments are stripped. The first
// occurrence of a key wins.
func ScanFields(data []byte, keys ...string) map[string]string {
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}
	found := make(map[string]string, len(keys))
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, want := wanted[key]; !want {
			continue
		}
		if _, seen := found[key]; seen {
			continue
		}
		found[key] = cleanValue(value)
	}
	return found
}

func cleanValue(raw string) string {
	value := strings.TrimSpace(raw)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	if idx := strings.Index(value, " #"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return value
}
