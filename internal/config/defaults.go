package config

const (
	defaultIncomingDir  = "~/.local/share/lectern/incoming"
	defaultProcessedDir = "~/.local/share/lectern/processed"
	defaultArchiveDir   = "~/.local/share/lectern/archives"
	defaultDataDir      = "~/.local/share/lectern/data"
	defaultLogDir       = "~/.local/share/lectern/logs"

	defaultTranscriberBaseURL = "http://127.0.0.1:9090"
	defaultTranscriberModel   = "base"
	defaultTranscriberLang    = "en"
	defaultDiarizerBaseURL    = "http://127.0.0.1:9091"

	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash"

	defaultSummaryPrompt    = "Summarize the following lecture transcript:"
	defaultHighlightsPrompt = "Extract key highlights from the following lecture transcript:"

	defaultServiceTimeoutSeconds = 600
	defaultGeminiTimeoutSeconds  = 60
	defaultRetryAttempts         = 3

	defaultMatchWindowMinutes = 15

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IncomingDir:  defaultIncomingDir,
			ProcessedDir: defaultProcessedDir,
			ArchiveDir:   defaultArchiveDir,
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
		},
		Transcriber: Transcriber{
			BaseURL:        defaultTranscriberBaseURL,
			Model:          defaultTranscriberModel,
			Language:       defaultTranscriberLang,
			TimeoutSeconds: defaultServiceTimeoutSeconds,
			RetryAttempts:  defaultRetryAttempts,
		},
		Diarizer: Diarizer{
			BaseURL:        defaultDiarizerBaseURL,
			TimeoutSeconds: defaultServiceTimeoutSeconds,
			RetryAttempts:  defaultRetryAttempts,
		},
		Gemini: Gemini{
			BaseURL:          defaultGeminiBaseURL,
			Model:            defaultGeminiModel,
			SummaryPrompt:    defaultSummaryPrompt,
			HighlightsPrompt: defaultHighlightsPrompt,
			TimeoutSeconds:   defaultGeminiTimeoutSeconds,
			RetryAttempts:    defaultRetryAttempts,
		},
		Schedule: Schedule{
			MatchWindowMinutes: defaultMatchWindowMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
