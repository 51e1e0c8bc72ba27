package config

import (
	"errors"
	"fmt"

	"lqcli/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLingQ(); err != nil {
		return err
	}
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLingQ() error {
	if c.LingQ.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("lingq.api_key is required. Set LINGQ_API_KEY env var or edit %s (create with 'lqcli config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	if c.UsesOpenAI() && c.OpenAI.APIKey == "" {
		return errors.New("openai.api_key is required when a source uses transcript_via = \"openai\" (or set OPENAI_API_KEY)")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.RecentItems <= 0 {
		return errors.New("sync.recent_items must be positive")
	}
	return nil
}

func (c *Config) validateSources() error {
	for i := range c.Sources {
		src := &c.Sources[i]
		label := fmt.Sprintf("sources[%d]", i)
		if src.Name != "" {
			label = fmt.Sprintf("sources[%d] (%s)", i, src.Name)
		}
		if src.Name == "" {
			return fmt.Errorf("%s: name must be set", label)
		}
		if src.URL == "" {
			return fmt.Errorf("%s: url must be set", label)
		}
		if src.CourseID == 0 {
			return fmt.Errorf("%s: course_id must be set", label)
		}
		if _, err := language.Normalize(src.Language); err != nil {
			return fmt.Errorf("%s: language: %w", label, err)
		}
		if !src.ContentType.Valid() {
			return fmt.Errorf("%s: unknown content_type %q", label, src.ContentType)
		}
		if _, err := ParseDownloadMethod(string(src.DownloadMethod)); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
	}
	return nil
}
