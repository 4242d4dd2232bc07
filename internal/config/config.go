package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"assetsync/internal/variants"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the content-tree layout plus tool-owned state directories.
// Relative values are resolved against Root.
type Paths struct {
	Root             string `toml:"root"`
	Inbox            string `toml:"inbox"`
	StagingImages    string `toml:"staging_images"`
	StagingFiles     string `toml:"staging_files"`
	ImageMetadataDir string `toml:"image_metadata_dir"`
	FileMetadataDir  string `toml:"file_metadata_dir"`
	LogDir           string `toml:"log_dir"`
	StateDir         string `toml:"state_dir"`
}

// Store selects and configures the object store backend.
type Store struct {
	Backend         string `toml:"backend"` // s3, oss or dir
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	UsePathStyle    bool   `toml:"use_path_style"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	PublicRead      bool   `toml:"public_read"`
	ImagePrefix     string `toml:"image_prefix"`
	StaticPrefix    string `toml:"static_prefix"`
	PublicBaseURL   string `toml:"public_base_url"`
	RequestTimeout  int    `toml:"request_timeout"` // seconds
	Dir             string `toml:"dir"`             // root for the dir backend
}

// Pipeline tunes the publish run.
type Pipeline struct {
	CleanupMode      string `toml:"cleanup_mode"`
	PlaceholderName  string `toml:"placeholder_name"`
	VariantProfile   string `toml:"variant_profile"`
	SmallImageWarnPx int    `toml:"small_image_warn_px"`
}

// Mirror configures the local download mirror.
type Mirror struct {
	Dir string `toml:"dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// History controls the SQLite run ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for assetsync.
//
// Configuration sections by subsystem:
//   - Paths: inbox, staging, metadata and state directories
//   - Store: object store backend, credentials, key prefixes
//   - Pipeline: cleanup behaviour, placeholder name, variant profile
//   - Variants: explicit responsive-image widths (overrides the profile)
//   - Mirror: local mirror directory for downloaded images
//   - Logging: log format, level, and retention
//   - History: SQLite run ledger
type Config struct {
	Paths    Paths           `toml:"paths"`
	Store    Store           `toml:"store"`
	Pipeline Pipeline        `toml:"pipeline"`
	Variants []variants.Spec `toml:"variants"`
	Mirror   Mirror          `toml:"mirror"`
	Logging  Logging         `toml:"logging"`
	History  History         `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the tool-owned directories. Content directories
// are created by the pipeline on demand so a missing inbox stays a no-op.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// VariantTable returns the frozen variant table for this configuration.
func (c *Config) VariantTable() (variants.Table, error) {
	return variants.NewTable(c.Variants)
}

// RequestTimeout returns the per-call object store timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Store.RequestTimeout <= 0 {
		return time.Duration(defaultRequestTimeout) * time.Second
	}
	return time.Duration(c.Store.RequestTimeout) * time.Second
}

// LockPath is the advisory lock file that serializes runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "assetsync.lock")
}

// DryRunDir is where publish --dry-run writes objects instead of the real store.
func (c *Config) DryRunDir() string {
	return filepath.Join(c.Paths.StateDir, "dry-run")
}

// ImageURL returns the public URL of an image object.
func (c *Config) ImageURL(name string) string {
	return joinURL(c.Store.PublicBaseURL, c.Store.ImagePrefix+name)
}

// StaticURL returns the public URL of a generic file object.
func (c *Config) StaticURL(name string) string {
	return joinURL(c.Store.PublicBaseURL, c.Store.StaticPrefix+name)
}

func joinURL(base, key string) string {
	if base == "" {
		return key
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// resolveUnder expands pathValue, anchoring relative values at root.
func resolveUnder(root, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if !strings.HasPrefix(pathValue, "~") && !filepath.IsAbs(pathValue) {
		pathValue = filepath.Join(root, pathValue)
	}
	return expandPath(pathValue)
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
