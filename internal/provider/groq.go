package provider

import "strings"

// GroqProvider implements Provider for Groq services
type GroqProvider struct{}

func (p *GroqProvider) Name() string {
	return ProviderGroq
}

func (p *GroqProvider) BaseURL() string {
	return "https://api.groq.com/openai/v1"
}

func (p *GroqProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "gsk_")
}

func (p *GroqProvider) DefaultModel(t ModelType) string {
	if t == LLM {
		return "llama-3.3-70b-versatile"
	}
	return "whisper-large-v3-turbo"
}

func (p *GroqProvider) Models() []Model {
	return []Model{
		{
			ID:          "whisper-large-v3",
			Name:        "Whisper Large v3",
			Description: "Most accurate Groq Whisper model",
			Type:        Transcription,
			Formats:     noSubtitles,
		},
		{
			ID:          "whisper-large-v3-turbo",
			Name:        "Whisper Large v3 Turbo",
			Description: "Faster, slightly less accurate",
			Type:        Transcription,
			Formats:     noSubtitles,
		},
		{
			ID:   "llama-3.3-70b-versatile",
			Name: "Llama 3.3 70B",
			Type: LLM,
		},
		{
			ID:   "llama-3.1-8b-instant",
			Name: "Llama 3.1 8B Instant",
			Type: LLM,
		},
	}
}
