package config

import (
	"fmt"
	"os"
	"strings"

	"lqcli/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLingQ()
	c.normalizeOpenAI()
	if err := c.normalizeDownload(); err != nil {
		return err
	}
	c.normalizeSync()
	c.normalizeLogging()
	c.normalizeNotifications()
	c.normalizeSources()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLingQ() {
	c.LingQ.APIKey = strings.TrimSpace(c.LingQ.APIKey)
	if c.LingQ.APIKey == "" {
		if value, ok := os.LookupEnv("LINGQ_API_KEY"); ok {
			c.LingQ.APIKey = strings.TrimSpace(value)
		}
	}
	c.LingQ.BaseURL = strings.TrimRight(strings.TrimSpace(c.LingQ.BaseURL), "/")
	if c.LingQ.BaseURL == "" {
		c.LingQ.BaseURL = defaultLingQBaseURL
	}
	if c.LingQ.RequestDelay < 0 {
		c.LingQ.RequestDelay = 0
	}
	if c.LingQ.TimeoutSeconds <= 0 {
		c.LingQ.TimeoutSeconds = defaultLingQTimeout
	}
}

func (c *Config) normalizeOpenAI() {
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	if c.OpenAI.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.OpenAI.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	if strings.TrimSpace(c.OpenAI.PostprocessingPrompt) == "" {
		c.OpenAI.PostprocessingPrompt = DefaultPostprocessingPrompt
	}
	c.OpenAI.PostprocessingModel = strings.TrimSpace(c.OpenAI.PostprocessingModel)
	if c.OpenAI.PostprocessingModel == "" {
		c.OpenAI.PostprocessingModel = defaultPostprocessingModel
	}
	c.OpenAI.WhisperModel = strings.TrimSpace(c.OpenAI.WhisperModel)
	if c.OpenAI.WhisperModel == "" {
		c.OpenAI.WhisperModel = defaultWhisperModel
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = defaultOpenAITimeout
	}
}

func (c *Config) normalizeDownload() error {
	c.Download.YtDlpBinary = strings.TrimSpace(c.Download.YtDlpBinary)
	if c.Download.YtDlpBinary == "" {
		c.Download.YtDlpBinary = defaultYtDlpBinary
	}
	if c.Download.TimeoutSeconds <= 0 {
		c.Download.TimeoutSeconds = defaultDownloadTimeout
	}
	if dir := strings.TrimSpace(c.Download.TempDir); dir != "" {
		expanded, err := expandPath(dir)
		if err != nil {
			return fmt.Errorf("download.temp_dir: %w", err)
		}
		c.Download.TempDir = expanded
	}
	return nil
}

func (c *Config) normalizeSync() {
	if c.Sync.RecentItems <= 0 {
		c.Sync.RecentItems = defaultRecentItems
	}
	if c.Sync.RunTimeoutSeconds < 0 {
		c.Sync.RunTimeoutSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.TimeoutSeconds <= 0 {
		c.Notifications.TimeoutSeconds = defaultNtfyTimeout
	}
}

func (c *Config) normalizeSources() {
	for i := range c.Sources {
		src := &c.Sources[i]
		src.Name = strings.TrimSpace(src.Name)
		src.URL = strings.TrimSpace(src.URL)
		src.ContentType = ContentType(strings.ToLower(strings.TrimSpace(string(src.ContentType))))
		if src.ContentType == "" {
			src.ContentType = defaultContentType
		}
		src.DownloadMethod = DownloadMethod(strings.ToLower(strings.TrimSpace(string(src.DownloadMethod))))
		if src.DownloadMethod == "" {
			src.DownloadMethod = defaultDownloadMethod
		}
		src.TranscriptVia = strings.ToLower(strings.TrimSpace(src.TranscriptVia))
		if src.TranscriptVia == "" {
			src.TranscriptVia = defaultTranscriptVia
		}
		if iso2 := language.ToISO2(src.Language); iso2 != "" {
			src.Language = iso2
		} else {
			src.Language = strings.TrimSpace(src.Language)
		}
		src.PostprocessingPrompt = strings.TrimSpace(src.PostprocessingPrompt)
	}
}
