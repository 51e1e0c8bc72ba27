package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure markers. Every error produced by the sync pipeline wraps exactly one of
// these so callers can discriminate with errors.Is.
var (
	ErrFetch         = errors.New("fetch error")
	ErrParse         = errors.New("parse error")
	ErrDownload      = errors.New("download error")
	ErrMissingTitle  = errors.New("missing title")
	ErrMissingLink   = errors.New("missing audio link")
	ErrTranscription = errors.New("transcription error")
	ErrPublish       = errors.New("publish error")
	ErrUnsupported   = errors.New("unsupported")
	ErrConfiguration = errors.New("configuration error")
)

var markers = []error{
	ErrFetch,
	ErrParse,
	ErrDownload,
	ErrMissingTitle,
	ErrMissingLink,
	ErrTranscription,
	ErrPublish,
	ErrUnsupported,
	ErrConfiguration,
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker. The marker should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrFetch
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the marker carried by err, or nil when err is untagged.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, marker := range markers {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

// KindLabel returns a short snake_case label for the marker carried by err.
func KindLabel(err error) string {
	switch Kind(err) {
	case ErrFetch:
		return "fetch"
	case ErrParse:
		return "parse"
	case ErrDownload:
		return "download"
	case ErrMissingTitle:
		return "missing_title"
	case ErrMissingLink:
		return "missing_link"
	case ErrTranscription:
		return "transcription"
	case ErrPublish:
		return "publish"
	case ErrUnsupported:
		return "unsupported"
	case ErrConfiguration:
		return "configuration"
	default:
		if err == nil {
			return ""
		}
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
