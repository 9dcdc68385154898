package llm

import "fmt"

const defaultGitHubModelsBaseURL = "https://models.inference.ai.azure.com"

// GitHubModelsProvider wraps OpenAIProvider with GitHub Models defaults.
// GitHub Models exposes an OpenAI-compatible API authenticated with a
// GitHub token, so the underlying SDK is reused.
type GitHubModelsProvider struct {
	*OpenAIProvider
}

// NewGitHubModelsProvider creates a provider targeting the GitHub Models API.
func NewGitHubModelsProvider(cfg GitHubModelsConfig) (*GitHubModelsProvider, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGitHubModelsBaseURL
	}

	oaiCfg := OpenAIConfig{
		APIKey:  cfg.Token,
		Model:   cfg.Model,
		BaseURL: baseURL,
	}

	inner, err := newOpenAIProviderRaw(oaiCfg)
	if err != nil {
		return nil, err
	}

	return &GitHubModelsProvider{OpenAIProvider: inner}, nil
}
