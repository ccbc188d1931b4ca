// Package config loads, normalizes, and validates boxpull configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BOX_EMAIL and BOX_PASSWORD. Always obtain settings through this package so
// downstream code receives sanitized paths and clear validation errors.
package config
