// Package config loads, validates, and defaults Lectern's TOML configuration.
package config
