// Package hostrun is the execution context the CLI hands to the pipeline. It
// owns the per-run concerns around publish and mirror: the single-run lock,
// run IDs, the object store client, preflight checks, and the history ledger.
package hostrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"assetsync/internal/config"
	"assetsync/internal/history"
	"assetsync/internal/logging"
	"assetsync/internal/objectstore"
)

// Options tunes how an Env is opened.
type Options struct {
	// DryRun publishes into a local directory under the state dir instead of
	// the configured bucket.
	DryRun bool
}

// Env carries everything a run needs. It replaces process-wide state: callers
// construct one and pass it to RunPublishPipeline or RunMirrorSync.
type Env struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   objectstore.Store
	History *history.Store
	DryRun  bool
}

// Open builds an Env for cfg, connecting the object store and, when enabled,
// the history ledger. Close releases it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Env, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	env := &Env{Config: cfg, Logger: logger, DryRun: opts.DryRun}
	store, err := openStore(ctx, cfg, opts.DryRun)
	if err != nil {
		return nil, err
	}
	env.Store = store

	if cfg.History.Enabled {
		hist, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		env.History = hist
	}
	return env, nil
}

func openStore(ctx context.Context, cfg *config.Config, dryRun bool) (objectstore.Store, error) {
	if dryRun {
		dir, err := objectstore.NewDir(cfg.DryRunDir())
		if err != nil {
			return nil, err
		}
		return objectstore.WithTimeout(dir, cfg.RequestTimeout()), nil
	}
	store, err := objectstore.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	return store, nil
}

// Close releases the history ledger.
func (e *Env) Close() error {
	if e == nil || e.History == nil {
		return nil
	}
	return e.History.Close()
}

// StoreLabel describes where uploads go, for logs and CLI output.
func (e *Env) StoreLabel() string {
	if e.DryRun {
		return "dir://" + e.Config.DryRunDir() + " (dry run)"
	}
	return objectstore.Describe(e.Config)
}

func (e *Env) validate() error {
	if e == nil || e.Config == nil {
		return errors.New("execution environment is not configured")
	}
	if e.Store == nil {
		return errors.New("object store is not configured")
	}
	return nil
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}

// acquireLock takes the advisory run lock or fails fast.
func acquireLock(cfg *config.Config) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LockPath()), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another assetsync run is already in progress (lock %s)", cfg.LockPath())
	}
	return lock, nil
}
