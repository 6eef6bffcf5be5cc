package cmd

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		BotToken:    "123:abc",
		DatabaseURL: "job_helper.db",
		Workers:     8,
		Scraper:     &ScraperConfig{Timeout: 10 * time.Second},
		AI: &AIConfig{
			Provider:    "gemini",
			APIKeyFile:  "/run/secrets/ai",
			MaxTokens:   300,
			MaxAttempts: 1,
		},
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "no bot token", mutate: func(c *Config) { c.BotToken = "" }, field: "BotToken"},
		{name: "unknown provider", mutate: func(c *Config) { c.AI.Provider = "openai" }, field: "Provider"},
		{name: "no ai key", mutate: func(c *Config) { c.AI.APIKeyFile = "" }, field: "APIKey"},
		{name: "no workers", mutate: func(c *Config) { c.Workers = 0 }, field: "Workers"},
		{name: "bad redis url", mutate: func(c *Config) { c.RedisURL = "not a url" }, field: "RedisURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := validateConfig(config)
			if err == nil || !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("expected error about %s, got %v", tt.field, err)
			}
		})
	}
}

func TestValidateConfigNormalizesProvider(t *testing.T) {
	config := validConfig()
	config.AI.Provider = " Claude "

	if err := validateConfig(config); err != nil {
		t.Fatalf("expected mixed-case provider to be accepted, got %v", err)
	}
	if config.AI.Provider != "claude" {
		t.Fatalf("expected provider to be normalized, got %q", config.AI.Provider)
	}
}

func TestValidateConfigExcept(t *testing.T) {
	config := validConfig()
	config.BotToken = ""
	config.AI.APIKeyFile = ""

	if err := validateConfig(config, "BotToken", "AI"); err != nil {
		t.Fatalf("expected excluded fields to be skipped, got %v", err)
	}
}

func TestPlainText(t *testing.T) {
	if got := plainText("Your grade: <b>middle</b>? &amp; more"); got != "Your grade: middle? & more" {
		t.Fatalf("unexpected plain text %q", got)
	}
}
