// Package config loads, normalizes, and validates songpatch tool settings.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SONGPATCH_FFMPEG for the external binaries. Per-song data lives in the
// map's audio.json and is handled by the songconfig package instead.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
