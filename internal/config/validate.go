package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"assetsync/internal/variants"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if _, err := variants.NewTable(c.Variants); err != nil {
		return fmt.Errorf("variants: %w", err)
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if filepath.Clean(c.Paths.StagingImages) == filepath.Clean(c.Paths.StagingFiles) {
		return errors.New("paths.staging_images and paths.staging_files must differ")
	}
	if filepath.Clean(c.Paths.Inbox) == filepath.Clean(c.Paths.StagingImages) ||
		filepath.Clean(c.Paths.Inbox) == filepath.Clean(c.Paths.StagingFiles) {
		return errors.New("paths.inbox must differ from the staging directories")
	}

	// Cleanup removes the parent of each staging directory recursively, so
	// that parent may hold nothing but staging data.
	protected := []namedPath{
		{"paths.inbox", c.Paths.Inbox},
		{"paths.image_metadata_dir", c.Paths.ImageMetadataDir},
		{"paths.file_metadata_dir", c.Paths.FileMetadataDir},
		{"paths.state_dir", c.Paths.StateDir},
		{"paths.log_dir", c.Paths.LogDir},
		{"mirror.dir", c.Mirror.Dir},
		{"history.path", c.History.Path},
	}
	if c.Store.Backend == BackendDir {
		protected = append(protected, namedPath{"store.dir", c.Store.Dir})
	}
	staging := []namedPath{
		{"paths.staging_images", c.Paths.StagingImages},
		{"paths.staging_files", c.Paths.StagingFiles},
	}
	for _, dir := range staging {
		if strings.TrimSpace(dir.path) == "" {
			continue
		}
		parent := filepath.Dir(filepath.Clean(dir.path))
		if strings.TrimSpace(c.Paths.Root) != "" && within(c.Paths.Root, parent) {
			return fmt.Errorf("%s: parent directory %s is removed after each run and must be a dedicated directory below paths.root",
				dir.name, parent)
		}
		for _, other := range protected {
			if strings.TrimSpace(other.path) == "" {
				continue
			}
			if overlaps(parent, other.path) {
				return fmt.Errorf("%s: parent directory %s is removed after each run and must not overlap %s (%s)",
					dir.name, parent, other.name, other.path)
			}
		}
	}
	return nil
}

type namedPath struct {
	name string
	path string
}

// overlaps reports whether a and b are the same path or one contains the other.
func overlaps(a, b string) bool {
	return within(a, b) || within(b, a)
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendS3, BackendOSS, BackendDir:
	default:
		return fmt.Errorf("store.backend must be one of s3, oss, dir (got %q)", c.Store.Backend)
	}
	if c.Store.RequestTimeout <= 0 {
		return errors.New("store.request_timeout must be positive")
	}
	if (c.Store.AccessKeyID == "") != (c.Store.SecretAccessKey == "") {
		return errors.New("store.access_key_id and store.secret_access_key must be set together")
	}
	return nil
}

// ValidateRemote checks the settings a network backend needs before the first
// request. Commands that never touch the store skip it.
func (c *Config) ValidateRemote() error {
	switch c.Store.Backend {
	case BackendS3:
		if c.Store.Bucket == "" {
			return errors.New("store.bucket is required. Set AWS_BUCKET_NAME or edit the config (create with 'assetsync config init')")
		}
	case BackendOSS:
		if c.Store.Bucket == "" {
			return errors.New("store.bucket is required for the oss backend")
		}
		if c.Store.Region == "" && c.Store.Endpoint == "" {
			return errors.New("store.region or store.endpoint is required for the oss backend")
		}
	}
	return nil
}

func (c *Config) validatePipeline() error {
	switch c.Pipeline.CleanupMode {
	case CleanupAll, CleanupProcessed:
	default:
		return fmt.Errorf("pipeline.cleanup_mode must be %q or %q (got %q)", CleanupAll, CleanupProcessed, c.Pipeline.CleanupMode)
	}
	if strings.ContainsAny(c.Pipeline.PlaceholderName, `/\`) {
		return errors.New("pipeline.placeholder_name must be a bare file name")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
