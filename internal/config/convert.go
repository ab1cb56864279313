package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leonardotrapani/chunkscribe/internal/codec"
	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/language"
	"github.com/leonardotrapani/chunkscribe/internal/llm"
	"github.com/leonardotrapani/chunkscribe/internal/pipeline"
	"github.com/leonardotrapani/chunkscribe/internal/provider"
	"github.com/leonardotrapani/chunkscribe/internal/retry"
	"github.com/leonardotrapani/chunkscribe/internal/transcriber"
	"github.com/leonardotrapani/chunkscribe/internal/workspace"
)

// ToPipelineConfig returns the explicit settings the orchestrator runs with.
func (c *Config) ToPipelineConfig() (pipeline.Config, error) {
	kind, err := format.Parse(c.Output.Format)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("invalid output.format: %w", err)
	}
	return pipeline.Config{
		MaxBytes:   c.Audio.MaxFileSize,
		Interval:   c.Audio.SplitInterval,
		Bitrate:    c.Audio.Bitrate,
		Kind:       kind,
		Extensions: c.Audio.Extensions,
	}, nil
}

// Language returns the normalized language hint; empty means auto-detect.
func (c *Config) Language() (string, error) {
	return language.Normalize(c.General.Language)
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	baseURL := c.Transcription.BaseURL
	if baseURL == "" {
		baseURL = c.providerBaseURL(c.Transcription.Provider)
	}
	return transcriber.Config{
		Provider: c.Transcription.Provider,
		APIKey:   c.resolveAPIKeyForProvider(c.Transcription.Provider),
		BaseURL:  baseURL,
		Model:    c.Transcription.Model,
	}
}

// ToLLMConfig returns the LLM adapter configuration
func (c *Config) ToLLMConfig() llm.Config {
	config := llm.Config{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		BaseURL:  c.providerBaseURL(c.LLM.Provider),
		Prompt:   c.LLM.Prompt,
	}
	if c.LLM.Provider != "" {
		config.APIKey = c.resolveAPIKeyForProvider(c.LLM.Provider)
	}
	return config
}

// IsLLMEnabled returns true if refinement is enabled and configured
func (c *Config) IsLLMEnabled() bool {
	return c.LLM.Enabled && c.LLM.Provider != ""
}

func (c *Config) ToCodecConfig() codec.Config {
	return codec.Config{
		FFmpegPath:  c.Codec.FFmpeg,
		FFprobePath: c.Codec.FFprobe,
	}
}

// Layout places the scratch directories under workspace.root. A relative
// transcripts_dir is resolved against the same root.
func (c *Config) Layout() workspace.Layout {
	transcripts := c.Output.TranscriptsDir
	if transcripts != "" && !filepath.IsAbs(transcripts) {
		transcripts = filepath.Join(c.Workspace.Root, transcripts)
	}
	return workspace.NewLayout(c.Workspace.Root, transcripts)
}

func (c *Config) CleanupPolicy() retry.Policy {
	return retry.Policy{
		Attempts: c.Workspace.CleanupAttempts,
		Delay:    c.Workspace.CleanupDelay,
		Backoff:  1,
	}
}

// resolveAPIKeyForProvider returns the API key for a provider: the providers
// table wins over the environment.
func (c *Config) resolveAPIKeyForProvider(providerName string) string {
	if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
		return pc.APIKey
	}

	if envVar := provider.EnvVarForProvider(providerName); envVar != "" {
		return os.Getenv(envVar)
	}

	return ""
}

func (c *Config) providerBaseURL(providerName string) string {
	if pc, ok := c.Providers[providerName]; ok && pc.BaseURL != "" {
		return pc.BaseURL
	}
	return ""
}
