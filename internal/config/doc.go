// Package config loads, normalizes, and validates phrasecut configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and batch orchestrator need: corpus directories, normalization policy,
// matcher budgets, span padding, extraction bounds, and worker counts.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
