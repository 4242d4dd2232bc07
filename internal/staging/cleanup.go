package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"assetsync/internal/config"
	"assetsync/internal/logging"
)

// CleanupResult contains the outcome of a post-run cleanup.
type CleanupResult struct {
	Removed []string
	Kept    []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Err folds the per-directory errors into one error, or nil.
func (r CleanupResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, fmt.Errorf("%s: %w", e.Path, e.Error))
	}
	return errors.Join(errs...)
}

// Cleanup removes the working directories after a run.
//
// In config.CleanupAll mode the parent of each working directory is removed
// recursively, including any file that failed to publish. In
// config.CleanupProcessed mode a working directory and then its parent are
// removed only when empty, so failed files stay for the next run.
func Cleanup(layout Layout, mode string, logger *slog.Logger) CleanupResult {
	var result CleanupResult
	if logger == nil {
		logger = logging.NewNop()
	}
	for _, dir := range []string{layout.Images, layout.Files} {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		parent := filepath.Dir(dir)
		switch mode {
		case config.CleanupProcessed:
			removeIfEmpty(dir, &result, logger)
			removeIfEmpty(parent, &result, logger)
		default:
			removeTree(parent, &result, logger)
		}
	}
	return result
}

func removeTree(path string, result *CleanupResult, logger *slog.Logger) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
		logger.Warn("failed to remove working directory",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "staging_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "check working directory permissions"),
			logging.String(logging.FieldImpact, "stale files may be reprocessed next run"),
		)
		return
	}
	result.Removed = append(result.Removed, path)
	logger.Info("removed working directory",
		logging.String("path", path),
		logging.String(logging.FieldEventType, "staging_cleanup"),
	)
}

func removeIfEmpty(path string, result *CleanupResult, logger *slog.Logger) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
		}
		return
	}
	if len(entries) > 0 {
		result.Kept = append(result.Kept, path)
		logger.Info("working directory kept; files remain for retry",
			logging.String("path", path),
			logging.Int("entries", len(entries)),
			logging.String(logging.FieldEventType, "staging_kept"),
		)
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
		return
	}
	result.Removed = append(result.Removed, path)
}
