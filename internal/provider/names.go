package provider

// Provider name constants for config and registry
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
)

// Environment variable names for API keys
const (
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvGroqKey   = "GROQ_API_KEY"
)

// EnvVarForProvider returns the environment variable name for a provider's API key
func EnvVarForProvider(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return EnvOpenAIKey
	case ProviderGroq:
		return EnvGroqKey
	default:
		return ""
	}
}
