package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/leonardotrapani/chunkscribe/internal/provider"
)

var ErrConfigNotFound = errors.New("config not found")

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "chunkscribe")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

// Load reads the config file from the user config directory.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile decodes path onto DefaultConfig, so keys missing from the file
// keep their default values.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (run chunkscribe init-config)", ErrConfigNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	config := DefaultConfig()
	meta, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}

	if config.Providers == nil {
		config.Providers = make(map[string]ProviderConfig)
	}
	config.applyModelDefaults(meta)

	return config, nil
}

// applyModelDefaults fills in the provider's default model when the file
// does not name one, so switching provider alone yields a valid pair.
func (c *Config) applyModelDefaults(meta toml.MetaData) {
	if !meta.IsDefined("transcription", "model") || c.Transcription.Model == "" {
		if p := provider.GetProvider(c.Transcription.Provider); p != nil {
			c.Transcription.Model = p.DefaultModel(provider.Transcription)
		}
	}
	if !meta.IsDefined("llm", "model") || c.LLM.Model == "" {
		if p := provider.GetProvider(c.LLM.Provider); p != nil {
			c.LLM.Model = p.DefaultModel(provider.LLM)
		}
	}
}
