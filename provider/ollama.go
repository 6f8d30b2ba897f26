// ABOUTME: Ollama adapter for local vision models via the /api/generate endpoint.
// ABOUTME: Speaks raw HTTP; Ollama needs no API key and runs on localhost by default.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const defaultOllamaURL = "http://localhost:11434"

type ollamaProvider struct {
	baseURL string
	client  *http.Client
}

func newOllama(cfg Config) *ollamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &ollamaProvider{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (p *ollamaProvider) Name() string { return NameOllama }

type ollamaGenerateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
	Error    string `json:"error,omitempty"`
}

func (p *ollamaProvider) Describe(ctx context.Context, req Request) (*Result, error) {
	imageB64, _, err := loadImageBase64(req.ImagePath)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Images: []string{imageB64},
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Provider: NameOllama, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, &NetworkError{Provider: NameOllama, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ErrorFromStatusCode(NameOllama, resp.StatusCode, strings.TrimSpace(string(raw)), retryAfterSeconds(resp))
	}

	var gen ollamaGenerateResponse
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if gen.Error != "" {
		return nil, &ProviderError{Provider: NameOllama, StatusCode: resp.StatusCode, Message: gen.Error}
	}

	text := strings.TrimSpace(gen.Response)
	if text == "" {
		return nil, &ProviderError{Provider: NameOllama, Message: "empty response"}
	}
	model := gen.Model
	if model == "" {
		model = req.Model
	}
	return &Result{Text: text, Model: model}, nil
}

func (p *ollamaProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// retryAfterSeconds parses a Retry-After header into seconds, nil if absent.
func retryAfterSeconds(resp *http.Response) *float64 {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return nil
	}
	seconds, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &seconds
}
