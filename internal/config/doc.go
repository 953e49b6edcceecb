// Package config loads, normalizes, and validates NutriScan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NUTRISCAN_BASE_URL and NUTRISCAN_USER_ID. The Config type centralizes every
// knob the CLI needs, allowing data directories, backend credentials, and
// camera settings to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
