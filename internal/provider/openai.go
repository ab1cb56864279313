package provider

import "strings"

// OpenAIProvider implements Provider for OpenAI services
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) BaseURL() string {
	return "https://api.openai.com/v1"
}

func (p *OpenAIProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "sk-")
}

func (p *OpenAIProvider) DefaultModel(t ModelType) string {
	if t == LLM {
		return "gpt-4o-mini"
	}
	return "whisper-1"
}

func (p *OpenAIProvider) Models() []Model {
	return []Model{
		// transcription models
		{
			ID:          "whisper-1",
			Name:        "Whisper 1",
			Description: "Production speech-to-text model with subtitle output",
			Type:        Transcription,
			Formats:     allFormats,
		},
		{
			ID:          "gpt-4o-transcribe",
			Name:        "GPT-4o Transcribe",
			Description: "Higher accuracy, text and json output only",
			Type:        Transcription,
			Formats:     textFormats,
		},
		{
			ID:          "gpt-4o-mini-transcribe",
			Name:        "GPT-4o Mini Transcribe",
			Description: "Faster GPT-4o transcription, text and json output only",
			Type:        Transcription,
			Formats:     textFormats,
		},
		// LLM models
		{
			ID:          "gpt-4o-mini",
			Name:        "GPT-4o Mini",
			Description: "Fast and affordable GPT-4 variant",
			Type:        LLM,
		},
		{
			ID:          "gpt-4o",
			Name:        "GPT-4o",
			Description: "Most capable GPT-4 model",
			Type:        LLM,
		},
	}
}
