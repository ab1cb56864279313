package config

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/language"
	"github.com/leonardotrapani/chunkscribe/internal/provider"
)

func (c *Config) Validate() error {
	if c.Audio.MaxFileSize <= 0 {
		return fmt.Errorf("invalid audio.max_file_size: %d", c.Audio.MaxFileSize)
	}
	if c.Audio.SplitInterval < time.Second {
		return fmt.Errorf("invalid audio.split_interval: %v (must be at least 1s)", c.Audio.SplitInterval)
	}
	if c.Audio.Bitrate == "" {
		return fmt.Errorf("invalid audio.bitrate: empty")
	}

	kind, err := format.Parse(c.Output.Format)
	if err != nil {
		return fmt.Errorf("invalid output.format: %w", err)
	}

	if _, err := language.Normalize(c.General.Language); err != nil {
		return fmt.Errorf("invalid general.language: %w (use \"auto\" or ISO-639-1 codes like 'en', 'es', 'fr')", err)
	}

	if c.Workspace.Root == "" {
		return fmt.Errorf("invalid workspace.root: empty")
	}
	if c.Workspace.CleanupAttempts < 1 {
		return fmt.Errorf("invalid workspace.cleanup_attempts: %d", c.Workspace.CleanupAttempts)
	}
	if c.Workspace.CleanupDelay < 0 {
		return fmt.Errorf("invalid workspace.cleanup_delay: %v", c.Workspace.CleanupDelay)
	}

	if err := c.validateTranscription(kind); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}

	if c.Codec.FFmpeg == "" || c.Codec.FFprobe == "" {
		return fmt.Errorf("invalid codec: ffmpeg and ffprobe paths are required")
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn or error)", c.Logging.Level)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}

func (c *Config) validateTranscription(kind format.Kind) error {
	t := c.Transcription
	if t.Provider == "" {
		return fmt.Errorf("invalid transcription.provider: empty")
	}
	p := provider.GetProvider(t.Provider)
	if p == nil {
		return fmt.Errorf("unsupported transcription.provider: %s (must be one of %v)", t.Provider, provider.ListProviders())
	}

	if t.Model == "" {
		return fmt.Errorf("invalid transcription.model: empty")
	}
	model, ok := provider.FindModel(p, t.Model)
	if !ok || model.Type != provider.Transcription {
		return fmt.Errorf("invalid model for %s: %s", t.Provider, t.Model)
	}
	if !model.SupportsFormat(kind) {
		return fmt.Errorf("model %s cannot produce %s output (supported: %v)", t.Model, kind, model.Formats)
	}

	if c.resolveAPIKeyForProvider(t.Provider) == "" {
		return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key) or environment variable (%s)",
			t.Provider, t.Provider, provider.EnvVarForProvider(t.Provider))
	}

	if t.Concurrency < 1 {
		return fmt.Errorf("invalid transcription.concurrency: %d", t.Concurrency)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("invalid transcription.timeout: %v", t.Timeout)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if !c.LLM.Enabled {
		return nil
	}
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider required when llm.enabled = true")
	}
	p := provider.GetProvider(c.LLM.Provider)
	if p == nil {
		return fmt.Errorf("invalid llm.provider: %s (must be one of %v)", c.LLM.Provider, provider.ListProviders())
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model required when llm.enabled = true")
	}
	if model, ok := provider.FindModel(p, c.LLM.Model); !ok || model.Type != provider.LLM {
		return fmt.Errorf("invalid llm.model for %s: %s", c.LLM.Provider, c.LLM.Model)
	}
	if c.resolveAPIKeyForProvider(c.LLM.Provider) == "" {
		return fmt.Errorf("%s API key required for LLM: not found in config (providers.%s.api_key) or environment variable (%s)",
			c.LLM.Provider, c.LLM.Provider, provider.EnvVarForProvider(c.LLM.Provider))
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("invalid llm.timeout: %v", c.LLM.Timeout)
	}
	return nil
}
