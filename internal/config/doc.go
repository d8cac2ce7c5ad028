// Package config loads, normalizes, and validates the TOML configuration
// that drives the daemon and CLI. Load applies repository defaults first, so
// a missing file yields a runnable configuration.
package config
