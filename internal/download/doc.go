// Package download acquires the audio bytes behind a resolved link.
//
// The strategy is keyed by config.DownloadMethod: yt-dlp runs the external tool
// into a scoped temporary directory that is removed on every exit path, and
// http fetches the link directly. Failures wrap services.ErrDownload.
package download
