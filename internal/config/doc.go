// Package config loads, normalizes, and validates podpress configuration
// from TOML files with environment variable fallbacks for secrets.
package config
