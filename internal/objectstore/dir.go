package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"assetsync/internal/fileutil"
	"assetsync/internal/services"
)

// Dir stores objects as plain files under Root. It backs dry runs, tests, and
// self-hosted setups that serve the directory directly.
type Dir struct {
	Root string
}

// NewDir returns a Dir store rooted at root, creating it when missing.
func NewDir(root string) (*Dir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, services.Wrap(services.ErrConfiguration, "dir-store", "open", "root directory is required", nil)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, "dir-store", "open", "create root", err)
	}
	return &Dir{Root: root}, nil
}

func (d *Dir) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", services.Wrap(services.ErrValidation, "dir-store", "key", fmt.Sprintf("object key %q escapes the store root", key), nil)
	}
	return filepath.Join(d.Root, clean), nil
}

// Put writes data atomically. contentType is not persisted.
func (d *Dir) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrStorage, "dir-store", "put", key, err)
	}
	target, err := d.path(key)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return services.Wrap(services.ErrStorage, "dir-store", "put", key, err)
	}
	return nil
}

// Get reads the object stored at key.
func (d *Dir) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "dir-store", "get", key, err)
	}
	target, err := d.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound("dir-store", key)
		}
		return nil, services.Wrap(services.ErrStorage, "dir-store", "get", key, err)
	}
	return data, nil
}

// Delete removes key. Missing objects are not an error.
func (d *Dir) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrStorage, "dir-store", "delete", key, err)
	}
	target, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrStorage, "dir-store", "delete", key, err)
	}
	return nil
}
