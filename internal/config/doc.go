// Package config loads, normalizes, and validates inkwell configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// INKWELL_SITE_URL. Keys that were renamed in earlier releases are still
// accepted; Deprecations reports them so the boot sequence can warn about
// them without refusing to start.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
