package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrNotFound reports that no configuration file exists at the resolved path.
var ErrNotFound = errors.New("configuration file not found")

// LingQ contains settings for the lesson catalog API.
type LingQ struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	RequestDelay   int    `toml:"request_delay"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OpenAI contains settings for transcription and transcript post-processing.
type OpenAI struct {
	APIKey               string `toml:"api_key"`
	BaseURL              string `toml:"base_url"`
	PostprocessingPrompt string `toml:"postprocessing_prompt"`
	PostprocessingModel  string `toml:"postprocessing_model"`
	WhisperModel         string `toml:"whisper_model"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
}

// Download contains settings for audio acquisition.
type Download struct {
	YtDlpBinary    string `toml:"ytdlp_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	TempDir        string `toml:"temp_dir"`
}

// Sync contains settings for the per-source synchronization loop.
type Sync struct {
	// RecentItems bounds how many of the newest feed entries are considered per source.
	RecentItems int `toml:"recent_items"`
	// RunTimeoutSeconds caps a whole sync run. Zero disables the deadline.
	RunTimeoutSeconds int `toml:"run_timeout_seconds"`
}

// Paths contains local state locations.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains settings for ntfy run summaries.
type Notifications struct {
	// NtfyTopic is the full ntfy topic URL. Empty disables notifications.
	NtfyTopic      string `toml:"ntfy_topic"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Config encapsulates all configuration values for lqcli.
//
// Configuration sections by subsystem:
//   - LingQ: lesson catalog credentials and request pacing
//   - OpenAI: Whisper transcription and transcript post-processing
//   - Download: yt-dlp binary and limits
//   - Sync: per-source item bound and run deadline
//   - Paths: local state (history ledger, run lock)
//   - Logging: log format and level
//   - Notifications: optional ntfy run summaries
//   - Sources: the configured content origins, in declaration order
type Config struct {
	LingQ    LingQ    `toml:"lingq"`
	OpenAI   OpenAI   `toml:"openai"`
	Download Download `toml:"download"`
	Sync     Sync     `toml:"sync"`
	Paths    Paths    `toml:"paths"`
	Logging  Logging  `toml:"logging"`

	Notifications Notifications `toml:"notifications"`

	Sources []Source `toml:"sources"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Unlike most
// settings, the file itself is mandatory: without it there are no sources.
// It returns the resolved path alongside the config.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, resolvedPath, fmt.Errorf("%w: %s (create one with 'lqcli config init')", ErrNotFound, resolvedPath)
	}

	file, err := os.Open(resolvedPath)
	if err != nil {
		return nil, resolvedPath, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, resolvedPath, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolvedPath, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, resolvedPath, err
	}

	return &cfg, resolvedPath, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lqcli.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local state directory.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// HistoryPath returns the location of the sync history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the location of the run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "lqcli.lock")
}

// UsesOpenAI reports whether any configured source needs the transcription provider.
func (c *Config) UsesOpenAI() bool {
	for i := range c.Sources {
		if c.Sources[i].TranscriptVia == TranscriptViaOpenAI {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
