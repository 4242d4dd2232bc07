package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"assetsync/internal/config"
	"assetsync/internal/objectstore"
)

// probeKey is fetched by CheckStore; a not-found answer proves the bucket is
// reachable with the configured credentials.
const probeKey = ".assetsync-preflight"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatable passes when path is a usable directory, or when it does not
// exist yet and its nearest existing ancestor is writable so a run can create it.
func CheckCreatable(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		ancestor = parent
	}
	check := CheckDirectoryAccess(name, ancestor)
	if !check.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s)", path, ancestor)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckStoreConfig verifies the store section is complete enough to connect.
func CheckStoreConfig(cfg *config.Config) Result {
	const name = "Object store config"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if err := cfg.ValidateRemote(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: objectstore.Describe(cfg)}
}

// CheckStore probes store with a single Get bounded by a 10-second timeout.
func CheckStore(ctx context.Context, store objectstore.Store) Result {
	const name = "Object store"
	if store == nil {
		return Result{Name: name, Detail: "not configured"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := store.Get(checkCtx, probeKey)
	switch {
	case err == nil, errors.Is(err, objectstore.ErrNotFound):
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case errors.Is(err, context.DeadlineExceeded):
		return Result{Name: name, Detail: "timed out"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("probe failed (%v)", err)}
	}
}

// CheckStoreFromConfig validates the store config and, when complete, opens
// the store and probes it.
func CheckStoreFromConfig(ctx context.Context, cfg *config.Config) Result {
	if check := CheckStoreConfig(cfg); !check.Passed {
		return Result{Name: "Object store", Detail: check.Detail}
	}
	store, err := objectstore.Open(ctx, cfg)
	if err != nil {
		return Result{Name: "Object store", Detail: fmt.Sprintf("open failed (%v)", err)}
	}
	return CheckStore(ctx, store)
}
