// Package syncer drives the per-source synchronization loop.
//
// For each selected source the Syncer reads the course's existing lesson titles
// once, resolves the feed, and walks the newest items. Every item ends in one
// of three outcomes: skipped as a duplicate, linked to an audio URL and handed
// off for download, transcription and publishing, or failed with a reason.
// Failures are isolated: an item failure never stops its source, and a source
// failure never stops the run.
package syncer
