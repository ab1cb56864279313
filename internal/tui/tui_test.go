package tui

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardotrapani/chunkscribe/internal/config"
	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/pipeline"
	"github.com/leonardotrapani/chunkscribe/internal/segment"
)

func TestTranscriptionModelOptionsFilterByFormat(t *testing.T) {
	values := func(kind format.Kind, providerName string) []string {
		var out []string
		for _, o := range transcriptionModelOptions(providerName, kind) {
			out = append(out, o.Value)
		}
		return out
	}

	assert.Equal(t, []string{"whisper-1", "gpt-4o-transcribe", "gpt-4o-mini-transcribe"}, values(format.Text, "openai"))
	assert.Equal(t, []string{"whisper-1"}, values(format.SRT, "openai"))
	assert.Empty(t, values(format.VTT, "groq"))
	assert.Len(t, values(format.Text, "groq"), 2)
	assert.Nil(t, transcriptionModelOptions("deepgram", format.Text))
}

func TestLLMModelOptions(t *testing.T) {
	for _, o := range llmModelOptions("openai") {
		assert.NotContains(t, o.Value, "whisper")
	}
	assert.NotEmpty(t, llmModelOptions("groq"))
}

func TestLanguageOptions(t *testing.T) {
	options := languageOptions("es")
	require.NotEmpty(t, options)
	assert.Equal(t, "auto", options[0].Value)
	assert.NotContains(t, options[0].Key, "(current)")

	var current []string
	for _, o := range options {
		if strings.HasSuffix(o.Key, "(current)") {
			current = append(current, o.Value)
		}
	}
	assert.Equal(t, []string{"es"}, current)

	assert.Contains(t, languageOptions("")[0].Key, "(current)")
}

func TestFormatOptions(t *testing.T) {
	options := formatOptions()
	require.Len(t, options, len(format.Kinds()))
	for _, o := range options {
		_, err := format.Parse(o.Value)
		assert.NoError(t, err)
	}
}

func TestProviderHelpers(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers["openai"] = config.ProviderConfig{APIKey: "sk-abcdefghijklmnop"}
	cfg.Providers["groq"] = config.ProviderConfig{}

	assert.Equal(t, []string{"openai"}, getConfiguredProviders(cfg))
	assert.Equal(t, "sk-abcd...mnop", maskAPIKey("sk-abcdefghijklmnop"))
	assert.Equal(t, "***", maskAPIKey("short"))

	options := providerOptions(cfg)
	require.Len(t, options, 2)
	assert.Equal(t, "groq", options[0].Value)
	assert.Contains(t, options[0].Key, "not configured")
	assert.Contains(t, options[1].Key, "sk-abcd...mnop")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateDuration(time.Second)("30m"))
	assert.Error(t, validateDuration(time.Second)("500ms"))
	assert.Error(t, validateDuration(0)("soon"))
	assert.NoError(t, validateDuration(0)("0s"))

	assert.NoError(t, validatePositiveInt("4"))
	assert.Error(t, validatePositiveInt("0"))
	assert.Error(t, validatePositiveInt("two"))
}

func TestRenderSummary(t *testing.T) {
	s := &pipeline.Summary{
		RunID: "run-42",
		Files: []pipeline.FileResult{
			{Path: "/in/memo.m4a", Output: "/out/memo.txt", Decision: segment.Direct, State: pipeline.Persisted, Segments: 1},
			{
				Path: "/in/lecture.mp3", Output: "/out/lecture.srt", Decision: segment.ConvertAndSplit,
				State: pipeline.Persisted, Segments: 5, Gaps: []int{1},
				Issues: []pipeline.SegmentIssue{{Index: 1, Err: errors.New("502 bad gateway")}},
			},
			{Path: "/in/broken.wav", State: pipeline.Failed, Err: errors.New("probe: invalid data")},
		},
		Cleanup: []error{errors.New("audio_chunks: permission denied")},
		Elapsed: 3 * time.Second,
	}

	out := RenderSummary(PlainRenderer(io.Discard), s)

	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "✓ memo.m4a direct, 1 segment → /out/memo.txt")
	assert.Contains(t, out, "◐ lecture.mp3 5 segments, missing 2 → /out/lecture.srt")
	assert.Contains(t, out, "segment 2: 502 bad gateway")
	assert.Contains(t, out, "✗ broken.wav failed: probe: invalid data")
	assert.Contains(t, out, "! workspace: audio_chunks: permission denied")
	assert.Contains(t, out, "1 ok, 1 partial, 1 failed in 3s")
}
