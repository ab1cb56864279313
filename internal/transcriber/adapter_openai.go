package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/leonardotrapani/chunkscribe/internal/format"
)

// audioClient is the subset of *openai.Client the adapters use.
type audioClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// OpenAIAdapter implements Adapter for the OpenAI Whisper API.
type OpenAIAdapter struct {
	client audioClient
	config Config
	name   string
	logger *zap.Logger
}

func NewOpenAIAdapter(config Config) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   ProviderOpenAI,
		logger: zap.NewNop(),
	}
}

// WithLogger returns the adapter with logging enabled.
func (a *OpenAIAdapter) WithLogger(logger *zap.Logger) *OpenAIAdapter {
	a.logger = logger.Named(a.name)
	return a
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    a.config.Model,
		FilePath: req.Path,
		Language: req.Language,
		Format:   openai.AudioResponseFormat(req.Kind),
	})
	duration := time.Since(start)

	if err != nil {
		a.logger.Warn("API call failed", zap.String("path", req.Path), zap.Duration("elapsed", duration), zap.Error(err))
		return "", classify(fmt.Errorf("%s transcription: %w", a.name, err))
	}

	content, err := render(resp, req.Kind)
	if err != nil {
		return "", fmt.Errorf("%s transcription: %w", a.name, err)
	}

	a.logger.Debug("transcribed", zap.String("path", req.Path), zap.Duration("elapsed", duration), zap.Int("bytes", len(content)))
	return content, nil
}

// render turns the client response back into the service's wire output.
// The client decodes JSON formats into a struct, so they are re-encoded.
func render(resp openai.AudioResponse, kind format.Kind) (string, error) {
	switch kind {
	case format.JSON:
		data, err := json.Marshal(struct {
			Text string `json:"text"`
		}{resp.Text})
		if err != nil {
			return "", fmt.Errorf("encode json response: %w", err)
		}
		return string(data), nil
	case format.VerboseJSON:
		data, err := json.Marshal(resp)
		if err != nil {
			return "", fmt.Errorf("encode verbose_json response: %w", err)
		}
		return string(data), nil
	default:
		return resp.Text, nil
	}
}
