package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration. It is built once at process
// start and passed by value to the factory; nothing mutates it afterwards.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "openai", "github", "anthropic", "gemini", "ollama", "mock"
	Provider string

	OpenAI    OpenAIConfig
	GitHub    GitHubModelsConfig
	Anthropic AnthropicConfig
	Gemini    GeminiConfig
	Ollama    OllamaConfig
	Retry     RetryConfig

	// Timeout is the maximum duration for a single LLM request.
	// Default: 120s — criterion evaluations against self-hosted models
	// can be slow.
	Timeout time.Duration
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for OpenAI-compatible APIs.
}

// GitHubModelsConfig holds GitHub Models configuration. GitHub Models is
// an OpenAI-compatible endpoint authenticated with a GitHub token.
type GitHubModelsConfig struct {
	Token   string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Default: "https://models.inference.ai.azure.com"
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

// OllamaConfig holds configuration for a self-hosted Ollama endpoint.
type OllamaConfig struct {
	BaseURL string // Default: "http://localhost:11434"
	Model   string // Default: "llama3:latest"
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
		Provider: "github",
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		GitHub: GitHubModelsConfig{
			Model:   "gpt-4o-mini",
			BaseURL: defaultGitHubModelsBaseURL,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Ollama: OllamaConfig{
			BaseURL: defaultOllamaBaseURL,
			Model:   "llama3:latest",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 120 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("RUBRICA_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if k := os.Getenv("RUBRICA_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("RUBRICA_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("RUBRICA_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("RUBRICA_GITHUB_TOKEN"); k != "" {
		cfg.GitHub.Token = k
	} else if k := os.Getenv("GITHUB_TOKEN"); k != "" {
		cfg.GitHub.Token = k
	}
	if m := os.Getenv("RUBRICA_GITHUB_MODEL"); m != "" {
		cfg.GitHub.Model = m
	}

	if k := os.Getenv("RUBRICA_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("RUBRICA_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("RUBRICA_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("RUBRICA_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	if u := os.Getenv("RUBRICA_OLLAMA_BASE_URL"); u != "" {
		cfg.Ollama.BaseURL = u
	}
	if m := os.Getenv("RUBRICA_OLLAMA_MODEL"); m != "" {
		cfg.Ollama.Model = m
	}

	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (GitHub → Gemini → OpenAI → Anthropic) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none
// is found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GITHUB_TOKEN"); k != "" {
		cfg.Provider = "github"
		cfg.GitHub.Token = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required credential set.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("RUBRICA_OPENAI_API_KEY is required for the openai provider")
		}
	case "github":
		if c.GitHub.Token == "" {
			return fmt.Errorf("RUBRICA_GITHUB_TOKEN is required for the github provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("RUBRICA_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("RUBRICA_GEMINI_API_KEY is required for the gemini provider")
		}
	case "ollama":
		// Self-hosted, no credential needed.
	case "mock":
		// No credential needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
