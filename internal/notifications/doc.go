// Package notifications delivers run summaries via ntfy.
//
// The service publishes to the topic configured under [notifications] in
// config.toml and degrades to a no-op when no topic is set, so callers never
// need to check whether notifications are enabled.
package notifications
