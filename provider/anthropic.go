// ABOUTME: Anthropic adapter using the official Go SDK's messages API with base64 image blocks.
// ABOUTME: SDK errors map onto the local error hierarchy for retry classification.
package provider

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 1024

type anthropicProvider struct {
	client anthropic.Client
}

func newAnthropic(cfg Config) (*anthropicProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigurationError{Message: "anthropic: API key required (set ANTHROPIC_API_KEY)"}
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &anthropicProvider{client: anthropic.NewClient(opts...)}, nil
}

func (p *anthropicProvider) Name() string { return NameAnthropic }

func (p *anthropicProvider) Describe(ctx context.Context, req Request) (*Result, error) {
	imageB64, mediaType, err := loadImageBase64(req.ImagePath)
	if err != nil {
		return nil, err
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, imageB64),
				anthropic.NewTextBlock(req.Prompt),
			),
		},
	})
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return nil, &ProviderError{Provider: NameAnthropic, Message: "empty response"}
	}
	return &Result{Text: text, Model: string(msg.Model)}, nil
}

func (p *anthropicProvider) Close() error { return nil }

func mapAnthropicError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return ErrorFromStatusCode(NameAnthropic, apierr.StatusCode, apierr.Error(), nil)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &NetworkError{Provider: NameAnthropic, Cause: err}
}
