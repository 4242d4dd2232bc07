// Package mirror downloads published images into a local directory, using the
// image metadata records as the index instead of a bucket listing.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"assetsync/internal/config"
	"assetsync/internal/fileutil"
	"assetsync/internal/logging"
	"assetsync/internal/metadata"
	"assetsync/internal/objectstore"
	"assetsync/internal/services"
)

// Result counts what a sync did with each entry.
type Result struct {
	Entries    int
	Downloaded int
	Skipped    int
	Failed     int
	Duration   time.Duration
}

// Syncer reconciles the mirror directory with the metadata index.
type Syncer struct {
	Dir    string
	Reader *metadata.Reader
	Store  objectstore.Store
	Logger *slog.Logger
}

// New builds a Syncer for cfg.
func New(cfg *config.Config, store objectstore.Store, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "mirror")
	return &Syncer{
		Dir: cfg.Mirror.Dir,
		Reader: &metadata.Reader{
			Dir:         cfg.Paths.ImageMetadataDir,
			ImagePrefix: cfg.Store.ImagePrefix,
			Logger:      logger,
		},
		Store:  store,
		Logger: logger,
	}
}

// Sync creates the mirror directory and downloads every indexed image that is
// not already present locally. Existing files are trusted without comparing
// them to the remote copy. Per-entry failures are logged and counted; the
// returned error reports only setup failures and cancellation.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	started := time.Now()
	var result Result
	logger := logging.WithContext(ctx, s.Logger)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return result, services.Wrap(services.ErrIO, "mirror", "setup", "create mirror directory "+s.Dir, err)
	}

	entries := s.Reader.ImageEntries()
	result.Entries = len(entries)
	logger.Info("mirror sync started",
		logging.String("dir", s.Dir),
		logging.Int("entries", len(entries)),
		logging.String(logging.FieldEventType, "mirror_start"),
	)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		downloaded, err := s.syncEntry(ctx, entry)
		switch {
		case err != nil:
			result.Failed++
			logging.WarnWithContext(logger, "failed to mirror image", "mirror_entry_failed",
				logging.String(logging.FieldUID, entry.UID),
				logging.String(logging.FieldKey, entry.Key),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the object exists in the bucket"),
				logging.String(logging.FieldImpact, "image missing from local mirror"),
			)
		case downloaded:
			result.Downloaded++
			logger.Debug("mirrored image", logging.String(logging.FieldKey, entry.Key))
		default:
			result.Skipped++
		}
	}

	result.Duration = time.Since(started)
	logger.Info("mirror sync finished",
		logging.Int("downloaded", result.Downloaded),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed),
		logging.Duration("duration", result.Duration),
		logging.String(logging.FieldEventType, "mirror_complete"),
	)
	return result, nil
}

func (s *Syncer) syncEntry(ctx context.Context, entry metadata.MirrorEntry) (bool, error) {
	if !filepath.IsLocal(filepath.FromSlash(entry.Key)) {
		return false, services.Wrap(services.ErrValidation, "mirror", "sync", fmt.Sprintf("key %q escapes the mirror directory", entry.Key), nil)
	}
	target := filepath.Join(s.Dir, filepath.FromSlash(entry.Key))
	if _, err := os.Stat(target); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, services.Wrap(services.ErrIO, "mirror", "sync", "stat "+target, err)
	}

	data, err := s.Store.Get(ctx, entry.Key)
	if err != nil {
		return false, err
	}
	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return false, services.Wrap(services.ErrIO, "mirror", "sync", "write "+target, err)
	}
	return true, nil
}
