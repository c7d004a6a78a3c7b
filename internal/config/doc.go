// Package config loads, defaults, normalizes, and validates the TOML
// configuration that drives the publishing pipeline. Secrets can be supplied
// through environment variables so CI runs never need them on disk.
package config
