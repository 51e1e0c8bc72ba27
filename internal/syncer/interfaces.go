package syncer

import (
	"context"

	"lqcli/internal/config"
	"lqcli/internal/feed"
	"lqcli/internal/history"
	"lqcli/internal/services/lingq"
)

// Catalog lists and publishes lessons in a course.
type Catalog interface {
	ListTitles(ctx context.Context, language string, courseID uint64) ([]string, error)
	CreateLesson(ctx context.Context, lesson lingq.Lesson) error
}

// FeedResolver fetches and decodes a feed.
type FeedResolver interface {
	Resolve(ctx context.Context, url string) (*feed.Feed, error)
}

// Downloader acquires audio bytes for a link.
type Downloader interface {
	Download(ctx context.Context, url string, method config.DownloadMethod) ([]byte, error)
}

// Transcriber turns audio into a cleaned-up transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
	Postprocess(ctx context.Context, transcript, prompt, model string) (string, error)
}

// Recorder stores item outcomes for later inspection.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}
