package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllama_Generate(t *testing.T) {
	var gotReq ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaResponse{
			Response:        `{"score": 80}`,
			Done:            true,
			DoneReason:      "stop",
			PromptEvalCount: 120,
			EvalCount:       40,
		})
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL, Model: "llama3:latest"})
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		System:      "You are a grader.",
		Messages:    []Message{{Role: RoleUser, Content: "grade this"}},
		MaxTokens:   2000,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotReq.System != "You are a grader." {
		t.Fatalf("system prompt not forwarded: %q", gotReq.System)
	}
	if gotReq.Prompt != "grade this" {
		t.Fatalf("prompt not forwarded: %q", gotReq.Prompt)
	}
	if gotReq.Stream {
		t.Fatal("expected stream=false")
	}
	if string(resp.Content) != `{"score": 80}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 160 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
}

func TestOllama_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL, Model: "llama3:latest"})
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	_, err = p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestOllama_EmptyPayloadIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Done: true})
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL, Model: "llama3:latest"})
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	_, err = p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestOllama_RequiresModel(t *testing.T) {
	if _, err := NewOllamaProvider(OllamaConfig{}); err == nil {
		t.Fatal("expected error for missing model")
	}
}
