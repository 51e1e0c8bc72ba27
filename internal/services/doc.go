// Package services defines shared utilities consumed by the sync pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source names, item titles, and stage
//     names for logging.
//   - Failure markers (ErrFetch, ErrParse, ErrDownload, ErrMissingTitle,
//     ErrMissingLink, ...) plus the Wrap helper so every failure carries its
//     kind and enough context to diagnose without re-running.
//
// Subpackages hold the HTTP clients for the lesson catalog and the
// transcription provider.
package services
