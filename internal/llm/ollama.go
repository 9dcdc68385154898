package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaProvider implements Provider against a self-hosted Ollama
// generation endpoint (POST /api/generate). There is no official SDK;
// the wire format is a single JSON request/response pair.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaProvider creates a provider targeting an Ollama server.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}

	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type ollamaRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  json.RawMessage `json:"format,omitempty"`
	Options map[string]any  `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body := ollamaRequest{
		Model:  p.model,
		System: req.System,
		Prompt: joinUserMessages(req.Messages),
		Stream: false,
	}

	options := map[string]any{}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if len(options) > 0 {
		body.Options = options
	}

	// Ollama accepts a JSON schema in the "format" field for structured
	// output.
	if req.Schema != nil {
		formatBytes, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		body.Format = formatBytes
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, &ErrRateLimit{Err: fmt.Errorf("ollama: %s", respBody)}
	case httpResp.StatusCode != http.StatusOK:
		return nil, &ErrProviderUnavailable{
			Err: fmt.Errorf("ollama: status %d: %s", httpResp.StatusCode, respBody),
		}
	}

	var out ollamaResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &ErrInvalidResponse{Content: respBody, Err: err}
	}
	if out.Response == "" {
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("ollama: empty response payload")}
	}

	content := json.RawMessage(out.Response)

	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  out.PromptEvalCount,
			OutputTokens: out.EvalCount,
			TotalTokens:  out.PromptEvalCount + out.EvalCount,
		},
		Model:      p.model,
		StopReason: mapOllamaStopReason(out),
	}, nil
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

func joinUserMessages(msgs []Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}

func mapOllamaStopReason(out ollamaResponse) string {
	if out.DoneReason == "length" {
		return "max_tokens"
	}
	return "end"
}
