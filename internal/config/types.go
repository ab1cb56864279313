package config

import "time"

type Config struct {
	General       GeneralConfig             `toml:"general"`
	Audio         AudioConfig               `toml:"audio"`
	Output        OutputConfig              `toml:"output"`
	Workspace     WorkspaceConfig           `toml:"workspace"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	LLM           LLMConfig                 `toml:"llm"`
	Codec         CodecConfig               `toml:"codec"`
	Logging       LoggingConfig             `toml:"logging"`
	Metrics       MetricsConfig             `toml:"metrics"`
	Notifications NotificationsConfig       `toml:"notifications"`
}

// GeneralConfig holds settings shared by every stage
type GeneralConfig struct {
	// Language is the spoken-language hint; empty means auto-detect.
	Language string `toml:"language"`
}

// AudioConfig controls when sources are converted and how they are split
type AudioConfig struct {
	MaxFileSize   int64         `toml:"max_file_size"` // bytes
	SplitInterval time.Duration `toml:"split_interval"`
	Bitrate       string        `toml:"bitrate"`
	Extensions    []string      `toml:"extensions"`
}

type OutputConfig struct {
	Format         string `toml:"format"` // text, srt, vtt, json, verbose_json
	TranscriptsDir string `toml:"transcripts_dir"`
	// Manifest writes a YAML record of each batch next to the transcripts.
	Manifest bool `toml:"manifest"`
}

// WorkspaceConfig locates the scratch directories and tunes their cleanup
type WorkspaceConfig struct {
	Root            string        `toml:"root"`
	CleanupAttempts int           `toml:"cleanup_attempts"`
	CleanupDelay    time.Duration `toml:"cleanup_delay"`
}

type TranscriptionConfig struct {
	Provider    string        `toml:"provider"`
	Model       string        `toml:"model"`
	BaseURL     string        `toml:"base_url"` // overrides providers.<name>.base_url
	Timeout     time.Duration `toml:"timeout"`
	Concurrency int           `toml:"concurrency"`
}

// ProviderConfig holds credentials for a provider
type ProviderConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// LLMConfig configures paragraph refinement of text output
type LLMConfig struct {
	Enabled  bool          `toml:"enabled"`
	Provider string        `toml:"provider"`
	Model    string        `toml:"model"`
	Prompt   string        `toml:"prompt"`
	Timeout  time.Duration `toml:"timeout"`
}

type CodecConfig struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

type LoggingConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type MetricsConfig struct {
	// Textfile is where batch metrics are written for the node exporter
	// textfile collector. Empty disables the export.
	Textfile string `toml:"textfile"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}
