package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"assetsync/internal/variants"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := loadDotEnv(c.Paths.Root); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizePipeline(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Root) == "" {
		c.Paths.Root = defaultRoot
	}
	if c.Paths.Root, err = expandPath(strings.TrimSpace(c.Paths.Root)); err != nil {
		return fmt.Errorf("paths.root: %w", err)
	}
	root := c.Paths.Root

	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.inbox", &c.Paths.Inbox, defaultInbox},
		{"paths.staging_images", &c.Paths.StagingImages, defaultStagingImages},
		{"paths.staging_files", &c.Paths.StagingFiles, defaultStagingFiles},
		{"paths.image_metadata_dir", &c.Paths.ImageMetadataDir, defaultImageMetadataDir},
		{"paths.file_metadata_dir", &c.Paths.FileMetadataDir, defaultFileMetadataDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"mirror.dir", &c.Mirror.Dir, defaultMirrorDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		if *field.value, err = resolveUnder(root, *field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	return nil
}

// loadDotEnv reads <root>/.env when present. Variables already set in the
// process environment win.
func loadDotEnv(root string) error {
	path := filepath.Join(root, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat .env: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultBackend
	}

	overrideFromEnv(&c.Store.Bucket, "AWS_BUCKET_NAME")
	overrideFromEnv(&c.Store.Region, "AWS_REGION")
	overrideFromEnv(&c.Store.AccessKeyID, "AWS_ACCESS_KEY_ID")
	overrideFromEnv(&c.Store.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	if c.Store.Backend == BackendOSS {
		overrideFromEnv(&c.Store.AccessKeyID, "OSS_ACCESS_KEY_ID")
		overrideFromEnv(&c.Store.SecretAccessKey, "OSS_ACCESS_KEY_SECRET")
	}

	c.Store.Bucket = strings.TrimSpace(c.Store.Bucket)
	c.Store.Region = strings.TrimSpace(c.Store.Region)
	c.Store.Endpoint = strings.TrimSpace(c.Store.Endpoint)
	c.Store.ImagePrefix = strings.TrimLeft(strings.TrimSpace(c.Store.ImagePrefix), "/")
	c.Store.StaticPrefix = strings.TrimLeft(strings.TrimSpace(c.Store.StaticPrefix), "/")
	if c.Store.RequestTimeout <= 0 {
		c.Store.RequestTimeout = defaultRequestTimeout
	}

	var err error
	if strings.TrimSpace(c.Store.Dir) == "" {
		c.Store.Dir = filepath.Join(c.Paths.StateDir, defaultDirStoreName)
	}
	if c.Store.Dir, err = resolveUnder(c.Paths.Root, c.Store.Dir); err != nil {
		return fmt.Errorf("store.dir: %w", err)
	}

	c.Store.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Store.PublicBaseURL), "/")
	if c.Store.PublicBaseURL == "" {
		c.Store.PublicBaseURL = c.defaultPublicBaseURL()
	}
	return nil
}

func (c *Config) defaultPublicBaseURL() string {
	switch c.Store.Backend {
	case BackendS3:
		if c.Store.Bucket == "" {
			return ""
		}
		if c.Store.Endpoint != "" {
			return strings.TrimRight(c.Store.Endpoint, "/") + "/" + c.Store.Bucket
		}
		return fmt.Sprintf(defaultS3PublicURLFormat, c.Store.Bucket)
	case BackendOSS:
		if c.Store.Bucket == "" || c.Store.Region == "" {
			return ""
		}
		return fmt.Sprintf("https://%s.oss-%s.aliyuncs.com", c.Store.Bucket, strings.TrimPrefix(c.Store.Region, "oss-"))
	case BackendDir:
		return "file://" + filepath.ToSlash(c.Store.Dir)
	}
	return ""
}

// overrideFromEnv replaces *target with a non-empty environment value.
func overrideFromEnv(target *string, key string) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func (c *Config) normalizePipeline() error {
	c.Pipeline.CleanupMode = strings.ToLower(strings.TrimSpace(c.Pipeline.CleanupMode))
	if c.Pipeline.CleanupMode == "" {
		c.Pipeline.CleanupMode = defaultCleanupMode
	}
	if c.Pipeline.PlaceholderName == "" {
		c.Pipeline.PlaceholderName = defaultPlaceholderName
	}
	if c.Pipeline.SmallImageWarnPx < 0 {
		c.Pipeline.SmallImageWarnPx = 0
	}
	c.Pipeline.VariantProfile = strings.ToLower(strings.TrimSpace(c.Pipeline.VariantProfile))
	if len(c.Variants) > 0 {
		return nil
	}
	if c.Pipeline.VariantProfile == "" {
		c.Pipeline.VariantProfile = variants.ProfileStandard
	}
	specs, ok := variants.Profile(c.Pipeline.VariantProfile)
	if !ok {
		return fmt.Errorf("pipeline.variant_profile: unknown profile %q (valid: %s)",
			c.Pipeline.VariantProfile, strings.Join(variants.ProfileNames(), ", "))
	}
	c.Variants = specs
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
	}
	var err error
	if c.History.Path, err = resolveUnder(c.Paths.Root, c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
