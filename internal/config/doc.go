// Package config loads, normalizes, and validates lqcli configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LINGQ_API_KEY and OPENAI_API_KEY. The Config type also owns the ordered list
// of Source records and the tag-based selection applied before a sync run.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language codes, and clear validation errors.
package config
