// ABOUTME: OpenAI adapter using the official Go SDK's chat completions with vision content parts.
// ABOUTME: Images are inlined as base64 data URIs; SDK errors map onto the local error hierarchy.
package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openaiProvider struct {
	client openai.Client
}

func newOpenAI(cfg Config) (*openaiProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigurationError{Message: "openai: API key required (set OPENAI_API_KEY)"}
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &openaiProvider{client: openai.NewClient(opts...)}, nil
}

func (p *openaiProvider) Name() string { return NameOpenAI }

func (p *openaiProvider) Describe(ctx context.Context, req Request) (*Result, error) {
	imageB64, mediaType, err := loadImageBase64(req.ImagePath)
	if err != nil {
		return nil, err
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", mediaType, imageB64)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(req.Prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURI}),
			}),
		},
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: NameOpenAI, Message: "no choices in response"}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, &ProviderError{Provider: NameOpenAI, Message: "empty response"}
	}
	return &Result{Text: text, Model: resp.Model}, nil
}

func (p *openaiProvider) Close() error { return nil }

// mapOpenAIError converts SDK errors into the local hierarchy so the retry
// loop can classify them.
func mapOpenAIError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return ErrorFromStatusCode(NameOpenAI, apierr.StatusCode, apierr.Message, nil)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &NetworkError{Provider: NameOpenAI, Cause: err}
}
