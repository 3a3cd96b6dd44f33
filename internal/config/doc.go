// Package config loads, normalizes, and validates onepace configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ONEPACE_TORRENT_BINARY. The Config type centralizes every knob the CLI and
// pipeline need: external tool names, file extensions, poller cadence, and the
// exclusion markers used when scraping list pages.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, dotted extensions, and clear validation errors.
package config
