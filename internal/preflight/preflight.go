package preflight

import (
	"context"

	"assetsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// RunAll executes the filesystem checks for the given config. The store probe
// is not included because it needs network access; see CheckStore.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Content root", cfg.Paths.Root),
		CheckCreatable("Inbox", cfg.Paths.Inbox),
		CheckCreatable("Image staging", cfg.Paths.StagingImages),
		CheckCreatable("File staging", cfg.Paths.StagingFiles),
		CheckCreatable("Image metadata", cfg.Paths.ImageMetadataDir),
		CheckCreatable("File metadata", cfg.Paths.FileMetadataDir),
		CheckCreatable("State directory", cfg.Paths.StateDir),
	}
	if cfg.Store.Backend == config.BackendDir {
		results = append(results, CheckCreatable("Store directory", cfg.Store.Dir))
	}
	return results
}
