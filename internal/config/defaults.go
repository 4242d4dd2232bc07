package config

import "assetsync/internal/variants"

const (
	defaultConfigPath        = "~/.config/assetsync/config.toml"
	projectConfigName        = "assetsync.toml"
	defaultRoot              = "."
	defaultInbox             = "content/uploads/_inbox"
	defaultStagingImages     = "content/uploads/_working-images/to-process"
	defaultStagingFiles      = "content/uploads/_working-files/to-process"
	defaultImageMetadataDir  = "data/images"
	defaultFileMetadataDir   = "data/files"
	defaultMirrorDir         = "assets/s3-images"
	defaultStateDir          = ".assetsync"
	defaultLogDir            = ".assetsync/logs"
	defaultLogRetentionDays  = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultBackend           = BackendS3
	defaultRegion            = "us-east-1"
	defaultStaticPrefix      = "static/"
	defaultRequestTimeout    = 60
	defaultCleanupMode       = CleanupAll
	defaultPlaceholderName   = "__add image or static files to this folder__"
	defaultSmallImageWarnPx  = 100
	defaultS3PublicURLFormat = "https://s3.amazonaws.com/%s"
	defaultHistoryFile       = "history.db"
	defaultDirStoreName      = "store"
)

// Store backends.
const (
	BackendS3  = "s3"
	BackendOSS = "oss"
	BackendDir = "dir"
)

// Cleanup modes.
const (
	// CleanupAll removes the staging parent directories unconditionally,
	// including files that failed to publish.
	CleanupAll = "all"
	// CleanupProcessed keeps failed files and removes staging dirs only when empty.
	CleanupProcessed = "processed"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Root:             defaultRoot,
			Inbox:            defaultInbox,
			StagingImages:    defaultStagingImages,
			StagingFiles:     defaultStagingFiles,
			ImageMetadataDir: defaultImageMetadataDir,
			FileMetadataDir:  defaultFileMetadataDir,
			LogDir:           defaultLogDir,
			StateDir:         defaultStateDir,
		},
		Store: Store{
			Backend:        defaultBackend,
			Region:         defaultRegion,
			PublicRead:     true,
			StaticPrefix:   defaultStaticPrefix,
			RequestTimeout: defaultRequestTimeout,
		},
		Pipeline: Pipeline{
			CleanupMode:      defaultCleanupMode,
			PlaceholderName:  defaultPlaceholderName,
			VariantProfile:   variants.ProfileStandard,
			SmallImageWarnPx: defaultSmallImageWarnPx,
		},
		Mirror: Mirror{
			Dir: defaultMirrorDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		History: History{
			Enabled: true,
		},
	}
}
