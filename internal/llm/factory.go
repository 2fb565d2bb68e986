package llm

import (
	"context"

	"github.com/abhisek/sokrates/internal/eventlog"
)

// NewProvider creates a Provider from configuration, wrapped with retry
// and logging middleware: caller -> retry -> logging -> base.
func NewProvider(ctx context.Context, cfg Config, repo eventlog.Repo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, &ErrNotConfigured{Reason: "unknown LLM provider: " + cfg.Provider}
	}
	if err != nil {
		return nil, err
	}

	if repo == nil {
		repo = eventlog.Nop()
	}

	return WithRetry(WithLogging(base, repo), cfg.Retry), nil
}

// NewProviderFromEnv builds a provider from environment configuration.
func NewProviderFromEnv(ctx context.Context, repo eventlog.Repo) (Provider, error) {
	return NewProvider(ctx, ConfigFromEnv(), repo)
}
