// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score annotates canonical ideas with a model-backed analysis,
// processed in fixed-size batches to bound backend load.
package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/idea-engine/internal/retry"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// GenerateOptions carries the sampling parameters for one request.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Backend abstracts the scoring model API so tests can supply a mock. The
// backend is treated as unreliable: slow responses, timeouts, and malformed
// text are all expected.
type Backend interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// OllamaBackend calls a local Ollama-compatible generate endpoint.
type OllamaBackend struct {
	Client  *http.Client
	BaseURL string
	Model   string
}

// generateRequest is the Ollama generate API request body.
type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Stream      bool    `json:"stream"`
}

// generateResponse is the Ollama generate API response body.
type generateResponse struct {
	Response string `json:"response"`
}

// Generate submits one prompt and returns the model's raw text response.
func (b *OllamaBackend) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:       b.Model,
		Prompt:      prompt,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := retry.CheckStatus(resp); err != nil {
		return "", err
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return gr.Response, nil
}

// NewOllamaBackend builds the default backend from the scoring config.
func NewOllamaBackend(client *http.Client, cfg types.ScoringConfig) *OllamaBackend {
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	return &OllamaBackend{Client: client, BaseURL: base, Model: cfg.Model}
}
