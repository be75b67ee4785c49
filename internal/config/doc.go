// Package config loads, normalizes, and validates Clipline configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the CLIPLINE_LLM_API_KEY
// environment fallback. The Config type centralizes every knob the daemon and
// CLI need, so downstream code always sees sanitized directories, canonical
// media tool commands, and clear validation errors.
package config
