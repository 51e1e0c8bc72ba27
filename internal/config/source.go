package config

import (
	"fmt"
	"strings"
)

// ContentType selects how an audio link is extracted from a feed item.
type ContentType string

const (
	// ContentTypeRSSAtom reads the enclosure of RSS items and the first link of
	// Atom entries. The feed format is detected by trying RSS, then Atom.
	ContentTypeRSSAtom ContentType = "rss_atom"
	// ContentTypeEnclosure only accepts media enclosures.
	ContentTypeEnclosure ContentType = "enclosure"
	// ContentTypeLink uses the entry's primary hyperlink.
	ContentTypeLink ContentType = "link"
)

var contentTypes = []ContentType{ContentTypeRSSAtom, ContentTypeEnclosure, ContentTypeLink}

// Valid reports whether the content type is one of the known policies.
func (c ContentType) Valid() bool {
	for _, known := range contentTypes {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns a display label for tables.
func (c ContentType) Label() string {
	switch c {
	case ContentTypeRSSAtom:
		return "RSS/Atom"
	case ContentTypeEnclosure:
		return "Enclosure"
	case ContentTypeLink:
		return "Link"
	default:
		return string(c)
	}
}

// DownloadMethod selects how audio is acquired once a link is resolved.
type DownloadMethod string

const (
	// DownloadYtDlp shells out to yt-dlp and converts to mp3.
	DownloadYtDlp DownloadMethod = "yt-dlp"
	// DownloadHTTP fetches the resolved link directly.
	DownloadHTTP DownloadMethod = "http"
)

// ParseDownloadMethod converts user input into a DownloadMethod.
func ParseDownloadMethod(value string) (DownloadMethod, error) {
	switch method := DownloadMethod(strings.ToLower(strings.TrimSpace(value))); method {
	case DownloadYtDlp, DownloadHTTP:
		return method, nil
	case "":
		return DownloadYtDlp, nil
	default:
		return "", fmt.Errorf("unknown download method %q (expected %q or %q)", value, DownloadYtDlp, DownloadHTTP)
	}
}

// Transcript provenance modes. The set is open; modes other than these are
// loaded but reported as unsupported when an item is handed off.
const (
	TranscriptViaOpenAI = "openai"
	TranscriptViaLingQ  = "lingq"
)

// Source is a configured content origin.
type Source struct {
	ContentType    ContentType    `toml:"content_type"`
	DownloadMethod DownloadMethod `toml:"download_method"`
	URL            string         `toml:"url"`
	Name           string         `toml:"name"`
	CourseID       uint64         `toml:"course_id"`
	Language       string         `toml:"language"`
	// Tags group sources for selective syncs. Nil means the source has no tags.
	Tags          []string `toml:"tags"`
	TranscriptVia string   `toml:"transcript_via"`
	// PostprocessingPrompt overrides openai.postprocessing_prompt for this source.
	PostprocessingPrompt string `toml:"postprocessing_prompt"`
}

// HasTag reports whether the source carries the tag. Comparison is case-sensitive.
func (s *Source) HasTag(tag string) bool {
	for _, own := range s.Tags {
		if own == tag {
			return true
		}
	}
	return false
}

// TagLabel joins the source tags for display.
func (s *Source) TagLabel() string {
	return strings.Join(s.Tags, ", ")
}

// Prompt returns the post-processing prompt for this source, falling back to fallback.
func (s *Source) Prompt(fallback string) string {
	if prompt := strings.TrimSpace(s.PostprocessingPrompt); prompt != "" {
		return prompt
	}
	return fallback
}

// FilterSources returns the sources selected by tags, preserving declaration
// order. An empty filter selects everything; otherwise a source is selected when
// any of its tags is in the filter. Untagged sources never match a non-empty filter.
func FilterSources(sources []Source, tags []string) []*Source {
	selected := make([]*Source, 0, len(sources))
	for i := range sources {
		src := &sources[i]
		if len(tags) == 0 {
			selected = append(selected, src)
			continue
		}
		for _, tag := range tags {
			if src.HasTag(tag) {
				selected = append(selected, src)
				break
			}
		}
	}
	return selected
}

// FilteredSources applies FilterSources to the configured sources.
func (c *Config) FilteredSources(tags []string) []*Source {
	return FilterSources(c.Sources, tags)
}
