package llm

import (
	"os"
	"strings"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "openai", "anthropic", "gemini", "mock"
	Provider string

	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Gemini    GeminiConfig
	Retry     RetryConfig
}

// OpenAIConfig holds configuration for OpenAI and OpenAI-compatible
// backends. All three fields are required for the provider to be
// considered configured.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// IsConfigured reports whether the OpenAI triple is fully set.
func (c OpenAIConfig) IsConfigured() bool {
	return c.APIKey != "" && c.BaseURL != "" && c.Model != ""
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. The chat backend is described by the
// OPENAI_API_KEY / OPENAI_BASE_URL / OPENAI_MODEL triple; alternative
// providers are opted into via SOKRATES_LLM_PROVIDER.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("SOKRATES_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	cfg.OpenAI.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.OpenAI.BaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	cfg.OpenAI.Model = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))

	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("SOKRATES_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("SOKRATES_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	return cfg
}

// Validate checks that the selected provider has its required settings.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if !c.OpenAI.IsConfigured() {
			return &ErrNotConfigured{
				Reason: "set OPENAI_API_KEY, OPENAI_BASE_URL, and OPENAI_MODEL",
			}
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return &ErrNotConfigured{Reason: "ANTHROPIC_API_KEY is required for the anthropic provider"}
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return &ErrNotConfigured{Reason: "GEMINI_API_KEY is required for the gemini provider"}
		}
	case "mock":
		// No settings needed.
	default:
		return &ErrNotConfigured{Reason: "unknown LLM provider: " + c.Provider}
	}
	return nil
}
