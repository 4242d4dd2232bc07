// Package logging assembles structured slog loggers and formatting helpers used
// across assetsync components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log lines
// with run IDs, stages, and asset uids. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
package logging
