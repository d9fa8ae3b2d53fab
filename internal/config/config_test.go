package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.Provider)
	}
	if cfg.Model != "gemini-2.5-flash" || cfg.ProModel != "gemini-2.5-pro" {
		t.Errorf("unexpected default models %q / %q", cfg.Model, cfg.ProModel)
	}
	if cfg.MaxConcurrency != 5 {
		t.Errorf("expected default max_concurrency 5, got %d", cfg.MaxConcurrency)
	}
	if cfg.Autosave.Delay() != 1500*time.Millisecond {
		t.Errorf("expected 1.5s autosave delay, got %s", cfg.Autosave.Delay())
	}
	if cfg.DataDir == "" {
		t.Error("expected a default data dir")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.green-analyzer.yml")

	original := DefaultConfig()
	original.Provider = ProviderAnthropic
	original.Model = "claude-haiku-4-5-20251001"
	original.ProModel = "claude-sonnet-4-5-20250929"
	original.DataDir = filepath.Join(dir, "data")
	original.Server.Port = 9191
	original.Server.AllowedOrigins = []string{"https://a.example", "https://b.example"}
	original.MaxCostUSD = 2.5

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model || loaded.ProModel != original.ProModel {
		t.Errorf("models: got %q/%q", loaded.Model, loaded.ProModel)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.Server.Port != 9191 {
		t.Errorf("server.port: got %d", loaded.Server.Port)
	}
	if loaded.MaxCostUSD != original.MaxCostUSD {
		t.Errorf("max_cost_usd: got %f, want %f", loaded.MaxCostUSD, original.MaxCostUSD)
	}
	if len(loaded.Server.AllowedOrigins) != 2 || loaded.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("allowed_origins: got %v", loaded.Server.AllowedOrigins)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.yml")

	t.Setenv("GREEN_PROVIDER", "openai")
	t.Setenv("GREEN_SERVER__PORT", "7000")
	t.Setenv("GREEN_AUTOSAVE__DELAY_MS", "250")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOpenAI)
	}
	// Switching provider without naming models picks that provider's preset.
	if loaded.Model != "gpt-4.1-mini" || loaded.ProModel != "gpt-4.1" {
		t.Errorf("expected openai preset, got %q/%q", loaded.Model, loaded.ProModel)
	}
	if loaded.Server.Port != 7000 {
		t.Errorf("expected nested env override, got port %d", loaded.Server.Port)
	}
	if loaded.Autosave.Delay() != 250*time.Millisecond {
		t.Errorf("expected 250ms delay, got %s", loaded.Autosave.Delay())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"invalid provider", func(c *Config) { c.Provider = "ollama" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"empty pro model", func(c *Config) { c.ProModel = "" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }},
		{"negative rpm", func(c *Config) { c.RequestsPerMinute = -1 }},
		{"negative cost", func(c *Config) { c.MaxCostUSD = -5 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"negative delay", func(c *Config) { c.Autosave.DelayMS = -1 }},
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should be valid, got: %v", err)
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderAnthropic)
	if p.Flash != "claude-haiku-4-5-20251001" {
		t.Errorf("expected haiku flash model, got %q", p.Flash)
	}

	// Unknown provider falls back to Google.
	p = GetPreset("unknown")
	if p.Pro != "gemini-2.5-pro" {
		t.Errorf("expected fallback to gemini pro, got %q", p.Pro)
	}
}

func TestShareBase(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ShareBase(); got != "http://localhost:8080/shared" {
		t.Errorf("unexpected default share base %q", got)
	}
	cfg.Server.ShareBaseURL = "https://green.example/shared"
	if got := cfg.ShareBase(); got != "https://green.example/shared" {
		t.Errorf("unexpected share base %q", got)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{"other", ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"http://localhost:*", []string{"http://localhost:*"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
