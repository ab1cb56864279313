package transcriber

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter implements Adapter for Groq's OpenAI-compatible Whisper API.
// Groq does not render subtitles, so srt and vtt are rejected.
type GroqAdapter struct {
	*OpenAIAdapter
}

func NewGroqAdapter(config Config) *GroqAdapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = groqBaseURL
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Model == "" {
		config.Model = "whisper-large-v3"
	}

	return &GroqAdapter{&OpenAIAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   ProviderGroq,
		logger: zap.NewNop(),
	}}
}

func (a *GroqAdapter) Transcribe(ctx context.Context, req Request) (string, error) {
	if req.Kind.Timed() {
		return "", rejected(fmt.Errorf("groq transcription: %s output is not supported", req.Kind))
	}
	return a.OpenAIAdapter.Transcribe(ctx, req)
}
