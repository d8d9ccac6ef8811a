// Package config loads, normalizes, and validates scriptqueue configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SCRIPTQUEUE_JWT_SECRET. The Config type centralizes every knob the daemon
// and CLI need, so the database location, API bind address, and notification
// credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
