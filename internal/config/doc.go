// Package config loads, normalizes, and validates assetsync configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), resolves content paths against paths.root, reads TOML files, and
// honours the AWS_* credential variables (optionally sourced from a .env file
// in the content root). Variant tables are expanded from a named profile when
// no explicit [[variants]] entries are configured.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical enum values, and clear validation errors.
package config
