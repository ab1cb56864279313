package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/pipeline"
	"github.com/leonardotrapani/chunkscribe/internal/segment"
)

// createTestConfig returns a valid configuration for testing
func createTestConfig() *Config {
	c := DefaultConfig()
	c.Providers["openai"] = ProviderConfig{APIKey: "sk-test"}
	return c
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, segment.DefaultMaxBytes, c.Audio.MaxFileSize)
	assert.Equal(t, 30*time.Minute, c.Audio.SplitInterval)
	assert.Equal(t, "96k", c.Audio.Bitrate)
	assert.Equal(t, "text", c.Output.Format)

	// defaults must not alias the package-level extension list
	c.Audio.Extensions[0] = "changed"
	assert.NotEqual(t, "changed", pipeline.DefaultExtensions[0])
}

func TestDefaultConfigWithoutKeyIsInvalid(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	err := DefaultConfig().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := createTestConfig()
	c.General.Language = "pt"
	c.Audio.SplitInterval = 20 * time.Minute
	c.Audio.Extensions = []string{"mp3", "opus"}
	c.Output.Format = "srt"
	c.Output.Manifest = true
	c.Transcription.Concurrency = 3
	c.Transcription.Timeout = 90 * time.Second
	c.Providers["groq"] = ProviderConfig{APIKey: "gsk_x", BaseURL: "http://localhost:8080/v1"}
	c.LLM.Enabled = true
	c.LLM.Model = "gpt-4o"
	c.LLM.Prompt = "Fix \"quotes\"\nand lines."
	c.Metrics.Textfile = "/tmp/chunkscribe.prom"
	c.Notifications = NotificationsConfig{Enabled: true, Type: "desktop"}

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, Save(c, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, `
[output]
  format = "vtt"

[transcription]
  provider = "groq"
`)

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "vtt", c.Output.Format)
	assert.Equal(t, "groq", c.Transcription.Provider)
	assert.Equal(t, "whisper-large-v3-turbo", c.Transcription.Model)
	assert.Equal(t, "gpt-4o-mini", c.LLM.Model)
	assert.Equal(t, 30*time.Minute, c.Audio.SplitInterval)
	assert.Equal(t, pipeline.DefaultExtensions, c.Audio.Extensions)
	assert.NotNil(t, c.Providers)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	_, err = LoadFile(writeFile(t, "[audio\nbitrate ="))
	assert.ErrorContains(t, err, "failed to parse")

	_, err = LoadFile(writeFile(t, "[recording]\nsample_rate = 16000\n"))
	assert.ErrorContains(t, err, "unknown keys")
}

func TestValidate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero max size", mutate: func(c *Config) { c.Audio.MaxFileSize = 0 }, wantErr: "audio.max_file_size"},
		{name: "short interval", mutate: func(c *Config) { c.Audio.SplitInterval = 500 * time.Millisecond }, wantErr: "audio.split_interval"},
		{name: "empty bitrate", mutate: func(c *Config) { c.Audio.Bitrate = "" }, wantErr: "audio.bitrate"},
		{name: "bad format", mutate: func(c *Config) { c.Output.Format = "docx" }, wantErr: "output.format"},
		{name: "bad language", mutate: func(c *Config) { c.General.Language = "klingon" }, wantErr: "general.language"},
		{name: "auto language", mutate: func(c *Config) { c.General.Language = "auto" }},
		{name: "region language", mutate: func(c *Config) { c.General.Language = "en_US" }},
		{name: "no cleanup attempts", mutate: func(c *Config) { c.Workspace.CleanupAttempts = 0 }, wantErr: "workspace.cleanup_attempts"},
		{name: "unknown provider", mutate: func(c *Config) { c.Transcription.Provider = "deepgram" }, wantErr: "unsupported transcription.provider"},
		{name: "unknown model", mutate: func(c *Config) { c.Transcription.Model = "nova-2" }, wantErr: "invalid model"},
		{name: "llm model as transcription", mutate: func(c *Config) { c.Transcription.Model = "gpt-4o-mini" }, wantErr: "invalid model"},
		{
			name: "model without subtitles",
			mutate: func(c *Config) {
				c.Output.Format = "srt"
				c.Transcription.Model = "gpt-4o-transcribe"
			},
			wantErr: "cannot produce srt",
		},
		{
			name: "groq without key",
			mutate: func(c *Config) {
				c.Transcription.Provider = "groq"
				c.Transcription.Model = "whisper-large-v3"
			},
			wantErr: "GROQ_API_KEY",
		},
		{name: "zero concurrency", mutate: func(c *Config) { c.Transcription.Concurrency = 0 }, wantErr: "transcription.concurrency"},
		{
			name: "llm enabled with wrong model",
			mutate: func(c *Config) {
				c.LLM.Enabled = true
				c.LLM.Model = "whisper-1"
			},
			wantErr: "llm.model",
		},
		{
			name: "llm enabled",
			mutate: func(c *Config) {
				c.LLM.Enabled = true
				c.LLM.Model = "gpt-4o-mini"
			},
		},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
		{name: "bad notification type", mutate: func(c *Config) { c.Notifications.Type = "email" }, wantErr: "notifications.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := createTestConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestAPIKeyResolution(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GROQ_API_KEY", "gsk_env")

	c := DefaultConfig()
	assert.Equal(t, "sk-env", c.ToTranscriberConfig().APIKey)

	c.Providers["openai"] = ProviderConfig{APIKey: "sk-file", BaseURL: "http://proxy/v1"}
	tc := c.ToTranscriberConfig()
	assert.Equal(t, "sk-file", tc.APIKey)
	assert.Equal(t, "http://proxy/v1", tc.BaseURL)

	c.Transcription.BaseURL = "http://override/v1"
	assert.Equal(t, "http://override/v1", c.ToTranscriberConfig().BaseURL)

	c.LLM.Provider = "groq"
	c.LLM.Model = "llama-3.1-8b-instant"
	c.LLM.Prompt = "custom"
	lc := c.ToLLMConfig()
	assert.Equal(t, "gsk_env", lc.APIKey)
	assert.Equal(t, "groq", lc.Provider)
	assert.Equal(t, "custom", lc.Prompt)
	assert.Empty(t, lc.BaseURL)
}

func TestConversions(t *testing.T) {
	c := createTestConfig()
	c.Output.Format = "verbose_json"
	c.Workspace.Root = "/data/work"
	c.General.Language = "pt-BR"

	pc, err := c.ToPipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, format.VerboseJSON, pc.Kind)
	assert.Equal(t, c.Audio.MaxFileSize, pc.MaxBytes)
	assert.Equal(t, c.Audio.SplitInterval, pc.Interval)
	assert.NoError(t, pc.Validate())

	lang, err := c.Language()
	require.NoError(t, err)
	assert.Equal(t, "pt", lang)

	layout := c.Layout()
	assert.Equal(t, "/data/work/transcripts", layout.TranscriptsDir)
	assert.Equal(t, "/data/work/audio_chunks", layout.SegmentDir)

	c.Output.TranscriptsDir = "/srv/out"
	assert.Equal(t, "/srv/out", c.Layout().TranscriptsDir)

	policy := c.CleanupPolicy()
	assert.Equal(t, 3, policy.Attempts)
	assert.Equal(t, 100*time.Millisecond, policy.Delay)

	codec := c.ToCodecConfig()
	assert.Equal(t, "ffmpeg", codec.FFmpegPath)
	assert.Equal(t, "ffprobe", codec.FFprobePath)

	c.Output.Format = "pdf"
	_, err = c.ToPipelineConfig()
	assert.Error(t, err)
}

func TestManagerReloadsOnWrite(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Save(DefaultConfig(), path))

	m, err := NewManager(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	changed := make(chan *Config, 4)
	m.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.StartWatching(ctx))
	defer m.Stop()

	updated := DefaultConfig()
	updated.Output.Format = "srt"
	require.NoError(t, Save(updated, path))

	// a save may surface as several events, the first possibly on a truncated file
	assert.Eventually(t, func() bool {
		return m.GetConfig().Output.Format == "srt"
	}, 5*time.Second, 20*time.Millisecond)
	assert.NotEmpty(t, changed)
}

func TestManagerKeepsConfigOnInvalidEdit(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Save(DefaultConfig(), path))

	m, err := NewManager(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[output]\nformat = \"docx\"\n"), 0o600))
	m.reloadConfig()
	assert.Equal(t, "text", m.GetConfig().Output.Format)
}

func TestNewManagerMissingFile(t *testing.T) {
	_, err := NewManager(filepath.Join(t.TempDir(), "config.toml"), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}
