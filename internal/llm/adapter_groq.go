package llm

import (
	"github.com/sashabaranov/go-openai"
)

// GroqAdapter implements Adapter using Groq's OpenAI-compatible API
type GroqAdapter struct {
	*OpenAIAdapter
}

// NewGroqAdapter creates a new Groq LLM adapter
func NewGroqAdapter(cfg Config) *GroqAdapter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = "https://api.groq.com/openai/v1"
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &GroqAdapter{&OpenAIAdapter{
		client:       openai.NewClientWithConfig(clientConfig),
		config:       cfg,
		name:         "groq",
		defaultModel: "llama-3.3-70b-versatile",
	}}
}
