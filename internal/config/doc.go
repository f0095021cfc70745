// Package config loads, normalizes, and validates ytscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads an optional TOML file. A missing file is normal: the
// window must open without any prior setup, so every value has a default.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical language codes, and clear validation errors.
package config
