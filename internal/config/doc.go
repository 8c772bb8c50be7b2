// Package config loads, normalizes, and validates showrunner configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the daemon and CLI need: render backend endpoint and polling cadence, gate
// wait thresholds, stalled-shot and orphan-recovery windows, and notification
// settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
