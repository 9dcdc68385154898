package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NewProvider creates a Provider from configuration. The provider is
// selected exactly once here; call sites hold the interface and never
// branch on the backend again.
//
// The returned provider is wrapped with the request-logging middleware
// but NOT with retries: the rubric evaluator wants a single attempt per
// criterion so a failed call degrades into the deterministic fallback.
// Callers that do want retries wrap the result with WithRetry themselves.
func NewProvider(ctx context.Context, cfg Config, sink RequestSink, log *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "github":
		base, err = NewGitHubModelsProvider(cfg.GitHub)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "ollama":
		base, err = NewOllamaProvider(cfg.Ollama)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, sink, log), nil
}
