package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".green-analyzer.yml"

// ModelPreset names the quick and the deep model of a provider.
type ModelPreset struct {
	Flash string
	Pro   string
}

var modelPresets = map[ProviderType]ModelPreset{
	ProviderGoogle:     {Flash: "gemini-2.5-flash", Pro: "gemini-2.5-pro"},
	ProviderAnthropic:  {Flash: "claude-haiku-4-5-20251001", Pro: "claude-sonnet-4-5-20250929"},
	ProviderOpenAI:     {Flash: "gpt-4.1-mini", Pro: "gpt-4.1"},
	ProviderOpenRouter: {Flash: "google/gemini-2.5-flash", Pro: "google/gemini-2.5-pro"},
}

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "green-analyzer")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	preset := modelPresets[ProviderGoogle]
	return &Config{
		Provider:          ProviderGoogle,
		Model:             preset.Flash,
		ProModel:          preset.Pro,
		DataDir:           DefaultDataDir(),
		MaxConcurrency:    5,
		RequestsPerMinute: 60,
		MaxCostUSD:        5.0,
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*"},
		},
		Autosave: AutosaveConfig{DelayMS: 1500},
	}
}

// GetPreset returns the model pair for provider. Returns the Google preset
// if the provider is unknown.
func GetPreset(provider ProviderType) ModelPreset {
	if preset, ok := modelPresets[provider]; ok {
		return preset
	}
	return modelPresets[ProviderGoogle]
}

// DBPath returns the sqlite file inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "green-analyzer.db")
}

// ShareBase returns the address share links are built on.
func (c *Config) ShareBase() string {
	if c.Server.ShareBaseURL != "" {
		return c.Server.ShareBaseURL
	}
	return fmt.Sprintf("http://localhost:%d/shared", c.Server.Port)
}
