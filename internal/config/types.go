package config

import "time"

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGoogle     ProviderType = "google"
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
)

// Config is the top-level analyzer configuration, corresponding to
// .green-analyzer.yml.
type Config struct {
	Provider          ProviderType   `yaml:"provider" koanf:"provider"`
	Model             string         `yaml:"model" koanf:"model"`
	ProModel          string         `yaml:"pro_model" koanf:"pro_model"`
	DataDir           string         `yaml:"data_dir" koanf:"data_dir"`
	MaxConcurrency    int            `yaml:"max_concurrency" koanf:"max_concurrency"`
	RequestsPerMinute int            `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	MaxCostUSD        float64        `yaml:"max_cost_usd" koanf:"max_cost_usd"`
	Server            ServerConfig   `yaml:"server" koanf:"server"`
	Autosave          AutosaveConfig `yaml:"autosave" koanf:"autosave"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	// ShareBaseURL is the public address share links point at.
	ShareBaseURL string `yaml:"share_base_url" koanf:"share_base_url"`
}

// AutosaveConfig holds session autosave settings.
type AutosaveConfig struct {
	DelayMS int `yaml:"delay_ms" koanf:"delay_ms"`
}

// Delay returns the autosave quiet period.
func (a AutosaveConfig) Delay() time.Duration {
	return time.Duration(a.DelayMS) * time.Millisecond
}
