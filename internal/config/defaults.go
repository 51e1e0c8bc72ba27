package config

const (
	defaultConfigPath          = "~/.config/lqcli/config.toml"
	defaultStateDir            = "~/.local/share/lqcli"
	defaultLingQBaseURL        = "https://www.lingq.com/api"
	defaultRequestDelay        = 5
	defaultLingQTimeout        = 60
	defaultOpenAIBaseURL       = "https://api.openai.com/v1"
	defaultPostprocessingModel = "gpt-4o-mini"
	defaultWhisperModel        = "whisper-1"
	defaultOpenAITimeout       = 300
	defaultYtDlpBinary         = "yt-dlp"
	defaultDownloadTimeout     = 900
	defaultRecentItems         = 5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultNtfyTimeout         = 10
	defaultContentType         = ContentTypeRSSAtom
	defaultDownloadMethod      = DownloadYtDlp
	defaultTranscriptVia       = TranscriptViaOpenAI
)

// DefaultPostprocessingPrompt instructs the model to clean up a transcript
// without altering its content.
const DefaultPostprocessingPrompt = `You are editing the transcript for a podcast or video.
You must NEVER modify the content of the transcript.
NEVER summarize the transcript or shorten it.
ALWAYS retain all content.
You must NEVER translate the transcript into any other language.
You MUST ALWAYS produce the original language.
NEVER change what anyone said.
You are responsible for post-processing the transcript to make it more readable.
This includes fixing punctuation, capitalization, and spelling mistakes.
You MAY also add MINOR additional information to the transcript, such as the names of speakers, as they speak, if known.
You SHALL NOT add any information that is not present in the transcript.
You SHALL group sentences into paragraphs if and when necessary.
IF the transcript has multiple people, then you shall group sentences into paragraphs by speaker.
You SHALL insert a blank line between paragraphs.`

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LingQ: LingQ{
			BaseURL:        defaultLingQBaseURL,
			RequestDelay:   defaultRequestDelay,
			TimeoutSeconds: defaultLingQTimeout,
		},
		OpenAI: OpenAI{
			BaseURL:              defaultOpenAIBaseURL,
			PostprocessingPrompt: DefaultPostprocessingPrompt,
			PostprocessingModel:  defaultPostprocessingModel,
			WhisperModel:         defaultWhisperModel,
			TimeoutSeconds:       defaultOpenAITimeout,
		},
		Download: Download{
			YtDlpBinary:    defaultYtDlpBinary,
			TimeoutSeconds: defaultDownloadTimeout,
		},
		Sync: Sync{
			RecentItems: defaultRecentItems,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			TimeoutSeconds: defaultNtfyTimeout,
		},
	}
}
