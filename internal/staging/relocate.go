// Package staging moves inbox drops into the per-kind working directories,
// enumerates what is waiting there, and tears the working directories down
// after a run.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"assetsync/internal/classify"
	"assetsync/internal/config"
	"assetsync/internal/fileutil"
	"assetsync/internal/logging"
	"assetsync/internal/services"
)

// Layout names the directories a run works in.
type Layout struct {
	Inbox       string
	Images      string
	Files       string
	Placeholder string
}

// LayoutFromConfig builds a Layout from resolved configuration paths.
func LayoutFromConfig(cfg *config.Config) Layout {
	return Layout{
		Inbox:       cfg.Paths.Inbox,
		Images:      cfg.Paths.StagingImages,
		Files:       cfg.Paths.StagingFiles,
		Placeholder: cfg.Pipeline.PlaceholderName,
	}
}

// StagedFile is a file waiting in a working directory.
type StagedFile struct {
	Path string
	Name string
	Kind classify.Kind
	Ext  string
}

// RelocateResult reports what Relocate did.
type RelocateResult struct {
	Moved   []StagedFile
	Skipped []string
}

// Relocate moves every valid regular file directly inside the inbox into the
// image or generic working directory under its sanitized name. A missing inbox
// is not an error. Entries that are not readable regular files stay in the
// inbox; a failure to move a valid file aborts the relocation.
func Relocate(ctx context.Context, layout Layout, logger *slog.Logger) (RelocateResult, error) {
	var result RelocateResult
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := os.ReadDir(layout.Inbox)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("inbox directory not found; nothing to relocate",
				logging.String("inbox", layout.Inbox),
				logging.String(logging.FieldEventType, "inbox_missing"),
			)
			return result, nil
		}
		return result, services.Wrap(services.ErrIO, "staging", "relocate", "read inbox", err)
	}

	for _, dir := range []string{layout.Images, layout.Files} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result, services.Wrap(services.ErrIO, "staging", "relocate", "create working directory "+dir, err)
		}
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		name := entry.Name()
		src := filepath.Join(layout.Inbox, name)
		if name == layout.Placeholder {
			continue
		}
		if !classify.IsValidFileType(name) {
			result.Skipped = append(result.Skipped, src)
			logger.Debug("ignoring unsupported inbox entry", logging.String("path", src))
			continue
		}
		info, err := os.Stat(src)
		if err != nil {
			result.Skipped = append(result.Skipped, src)
			logging.WarnWithContext(logger, "inbox entry is unreadable; left in inbox", "relocate_skipped",
				logging.String("path", src),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the entry or point it at a regular file"),
			)
			continue
		}
		if !info.Mode().IsRegular() {
			result.Skipped = append(result.Skipped, src)
			logger.Debug("ignoring non-regular inbox entry", logging.String("path", src))
			continue
		}

		sanitized := classify.SanitizeFilename(name)
		kind := classify.Classify(sanitized)
		if kind == classify.KindInvalid {
			result.Skipped = append(result.Skipped, src)
			logging.WarnWithContext(logger, "file name has no usable characters after sanitizing; left in inbox", "relocate_skipped",
				logging.String("path", src),
				logging.String("sanitized", sanitized),
				logging.String(logging.FieldErrorHint, "rename the file using ASCII letters or digits"),
			)
			continue
		}

		targetDir := layout.Files
		if kind == classify.KindImage {
			targetDir = layout.Images
		}
		dst := filepath.Join(targetDir, sanitized)
		if err := fileutil.MoveFile(src, dst); err != nil {
			return result, services.Wrap(services.ErrIO, "staging", "relocate", fmt.Sprintf("move %s to %s", src, dst), err)
		}
		logger.Info("relocated inbox file",
			logging.String("from", name),
			logging.String("to", dst),
			logging.String("kind", string(kind)),
			logging.String(logging.FieldEventType, "file_relocated"),
		)
		result.Moved = append(result.Moved, StagedFile{Path: dst, Name: sanitized, Kind: kind, Ext: classify.Ext(sanitized)})
	}
	return result, nil
}
