package testsupport

import (
	"path/filepath"
	"testing"

	"assetsync/internal/config"
	"assetsync/internal/variants"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory, with every
// path resolved to its default location under that root, the dir backend
// selected, and the standard variant profile expanded.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Root = base
	cfgVal.Paths.Inbox = filepath.Join(base, "content", "uploads", "_inbox")
	cfgVal.Paths.StagingImages = filepath.Join(base, "content", "uploads", "_working-images", "to-process")
	cfgVal.Paths.StagingFiles = filepath.Join(base, "content", "uploads", "_working-files", "to-process")
	cfgVal.Paths.ImageMetadataDir = filepath.Join(base, "data", "images")
	cfgVal.Paths.FileMetadataDir = filepath.Join(base, "data", "files")
	cfgVal.Paths.StateDir = filepath.Join(base, ".assetsync")
	cfgVal.Paths.LogDir = filepath.Join(base, ".assetsync", "logs")
	cfgVal.Mirror.Dir = filepath.Join(base, "assets", "s3-images")
	cfgVal.Store.Backend = config.BackendDir
	cfgVal.Store.Dir = filepath.Join(base, "bucket")
	cfgVal.Store.Bucket = "test-bucket"
	cfgVal.Store.PublicBaseURL = "https://s3.amazonaws.com/test-bucket"
	cfgVal.History.Path = filepath.Join(base, ".assetsync", "history.db")
	cfgVal.Variants, _ = variants.Profile(variants.ProfileStandard)

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithVariants replaces the variant table.
func WithVariants(specs ...variants.Spec) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Variants = specs
	}
}

// WithCleanupMode sets pipeline.cleanup_mode.
func WithCleanupMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.CleanupMode = mode
	}
}

// WithHistory toggles the run ledger.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}
