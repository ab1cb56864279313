// Package provider lists the hosted services and models chunkscribe can use.
package provider

import (
	"slices"
	"sort"
)

// Provider describes an OpenAI-compatible service.
type Provider interface {
	Name() string
	// BaseURL is the API root passed to the OpenAI client.
	BaseURL() string
	ValidateAPIKey(key string) bool
	Models() []Model
	DefaultModel(t ModelType) string
}

var registry = make(map[string]Provider)

func init() {
	Register(&OpenAIProvider{})
	Register(&GroqProvider{})
}

// Register adds a provider to the registry
func Register(p Provider) {
	registry[p.Name()] = p
}

// GetProvider returns a provider by name, or nil if not found
func GetProvider(name string) Provider {
	return registry[name]
}

// ListProviders returns all registered provider names, sorted
func ListProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelsOfType filters the provider's models by type.
func ModelsOfType(p Provider, t ModelType) []Model {
	var out []Model
	for _, m := range p.Models() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// FindModel looks up a model by id.
func FindModel(p Provider, id string) (Model, bool) {
	models := p.Models()
	i := slices.IndexFunc(models, func(m Model) bool { return m.ID == id })
	if i < 0 {
		return Model{}, false
	}
	return models[i], true
}
