// Package transcriber sends audio units to a remote speech-to-text service
// and collects the per-unit fragments in index order.
package transcriber

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leonardotrapani/chunkscribe/internal/format"
)

// Adapter transcribes one audio file in the requested output format.
type Adapter interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}

// Request is a single call to the transcription service.
type Request struct {
	Path     string
	Kind     format.Kind
	Language string
}

// Unit is one piece of audio to transcribe: a whole file when the source was
// not split, otherwise one segment.
type Unit struct {
	Index  int
	Path   string
	Offset time.Duration
}

// Fragment is the service output for one unit, in the run's format.
type Fragment struct {
	Index   int
	Offset  time.Duration
	Kind    format.Kind
	Content string
}

// Config selects and configures the backend.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// Provider names accepted by NewAdapter.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
)

func DefaultConfig() Config {
	return Config{
		Provider: ProviderOpenAI,
		Model:    "whisper-1",
	}
}

// NewAdapter builds the adapter named by config.Provider.
func NewAdapter(config Config, logger *zap.Logger) (Adapter, error) {
	switch config.Provider {
	case ProviderOpenAI:
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAIAdapter(config).WithLogger(logger), nil

	case ProviderGroq:
		if config.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required")
		}
		a := NewGroqAdapter(config)
		a.WithLogger(logger)
		return a, nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}
