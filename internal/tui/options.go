package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/chunkscribe/internal/config"
	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/language"
	"github.com/leonardotrapani/chunkscribe/internal/provider"
)

// providerDisplayNames maps provider IDs to human-readable names
var providerDisplayNames = map[string]string{
	provider.ProviderOpenAI: "OpenAI - Whisper + GPT",
	provider.ProviderGroq:   "Groq - Whisper + Llama",
}

func getProviderDisplayName(providerName string) string {
	if name, ok := providerDisplayNames[providerName]; ok {
		return name
	}
	return providerName
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// getConfiguredProviders returns the providers with an API key in the file
func getConfiguredProviders(cfg *config.Config) []string {
	providers := make([]string, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

func providerOptions(cfg *config.Config) []huh.Option[string] {
	var options []huh.Option[string]
	for _, name := range provider.ListProviders() {
		status := "(not configured)"
		if pc, ok := cfg.Providers[name]; ok && pc.APIKey != "" {
			status = "(" + maskAPIKey(pc.APIKey) + ")"
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s %s", getProviderDisplayName(name), status), name))
	}
	return options
}

// transcriptionModelOptions lists the provider's models that can answer in
// kind, so the form cannot produce a config that fails validation.
func transcriptionModelOptions(providerName string, kind format.Kind) []huh.Option[string] {
	p := provider.GetProvider(providerName)
	if p == nil {
		return nil
	}

	var options []huh.Option[string]
	for _, m := range provider.ModelsOfType(p, provider.Transcription) {
		if !m.SupportsFormat(kind) {
			continue
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s - %s", m.ID, m.Description), m.ID))
	}
	return options
}

func llmModelOptions(providerName string) []huh.Option[string] {
	p := provider.GetProvider(providerName)
	if p == nil {
		return nil
	}

	var options []huh.Option[string]
	for _, m := range provider.ModelsOfType(p, provider.LLM) {
		options = append(options, huh.NewOption(fmt.Sprintf("%s - %s", m.ID, m.Description), m.ID))
	}
	return options
}

func formatOptions() []huh.Option[string] {
	labels := map[format.Kind]string{
		format.Text:        "Plain text with segment markers",
		format.SRT:         "SubRip subtitles",
		format.VTT:         "WebVTT subtitles",
		format.JSON:        "JSON, one entry per segment",
		format.VerboseJSON: "Verbose JSON with timings",
	}
	var options []huh.Option[string]
	for _, k := range format.Kinds() {
		options = append(options, huh.NewOption(fmt.Sprintf("%s - %s", k, labels[k]), string(k)))
	}
	return options
}

func languageOptions(current string) []huh.Option[string] {
	autoLabel := "Auto-detect"
	if current == "" {
		autoLabel += " (current)"
	}
	options := []huh.Option[string]{huh.NewOption(autoLabel, "auto")}

	for _, lang := range language.List() {
		label := fmt.Sprintf("%s (%s)", lang.Name, lang.Code)
		if lang.NativeName != "" && lang.NativeName != lang.Name {
			label = fmt.Sprintf("%s - %s (%s)", lang.Name, lang.NativeName, lang.Code)
		}
		if lang.Code == current {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, lang.Code))
	}
	return options
}

func validateDuration(min time.Duration) func(string) error {
	return func(s string) error {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("use a duration like 30m or 90s")
		}
		if d < min {
			return fmt.Errorf("must be at least %s", min)
		}
		return nil
	}
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}
