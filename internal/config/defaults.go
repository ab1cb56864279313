package config

import (
	"slices"
	"time"

	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/pipeline"
	"github.com/leonardotrapani/chunkscribe/internal/provider"
	"github.com/leonardotrapani/chunkscribe/internal/retry"
	"github.com/leonardotrapani/chunkscribe/internal/segment"
)

// DefaultConfig returns the configuration used when no file exists and as
// the base every loaded file is decoded onto.
func DefaultConfig() *Config {
	cleanup := retry.DefaultPolicy()
	return &Config{
		General: GeneralConfig{
			Language: "en",
		},
		Audio: AudioConfig{
			MaxFileSize:   segment.DefaultMaxBytes,
			SplitInterval: 30 * time.Minute,
			Bitrate:       "96k",
			Extensions:    slices.Clone(pipeline.DefaultExtensions),
		},
		Output: OutputConfig{
			Format:         string(format.Text),
			TranscriptsDir: "transcripts",
		},
		Workspace: WorkspaceConfig{
			Root:            ".",
			CleanupAttempts: cleanup.Attempts,
			CleanupDelay:    cleanup.Delay,
		},
		Transcription: TranscriptionConfig{
			Provider:    provider.ProviderOpenAI,
			Model:       "whisper-1",
			Timeout:     10 * time.Minute,
			Concurrency: 1,
		},
		Providers: make(map[string]ProviderConfig),
		LLM: LLMConfig{
			Enabled:  false,
			Provider: provider.ProviderOpenAI,
			Model:    "gpt-4o-mini",
			Timeout:  2 * time.Minute,
		},
		Codec: CodecConfig{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Notifications: NotificationsConfig{
			Enabled: false,
			Type:    "log",
		},
	}
}
