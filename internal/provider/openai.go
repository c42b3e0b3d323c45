package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// openAIProvider talks to any OpenAI-format chat completions endpoint,
// including relay services, via the BaseURL override.
type openAIProvider struct {
	client          *openai.Client
	model           string
	translatePolicy retryPolicy
	termsPolicy     retryPolicy
}

func newOpenAIProvider(config *Config) (*openAIProvider, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	cc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cc.BaseURL = config.BaseURL
	}
	cc.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &openAIProvider{
		client:          openai.NewClientWithConfig(cc),
		model:           config.Model,
		translatePolicy: config.translatePolicy(),
		termsPolicy:     config.termsPolicy(),
	}, nil
}

func (p *openAIProvider) Name() string {
	return "openai"
}

// Translate uses a low temperature to keep renderings stable.
func (p *openAIProvider) Translate(ctx context.Context, prompt string) (string, error) {
	return withRetry(ctx, p.translatePolicy, func(ctx context.Context) (string, error) {
		return p.complete(ctx, prompt, 0.1)
	})
}

// ExtractTerms uses a near-zero temperature so repeated extraction over the
// same chapter proposes the same terms.
func (p *openAIProvider) ExtractTerms(ctx context.Context, prompt string) (string, error) {
	return withRetry(ctx, p.termsPolicy, func(ctx context.Context) (string, error) {
		return p.complete(ctx, prompt, 0.01)
	})
}

func (p *openAIProvider) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in reply", ErrTransient)
	}
	return validateReply(resp.Choices[0].Message.Content)
}

// classifyOpenAIError sorts API failures into the retryable and permanent
// buckets. Anything unrecognized (network errors, timeouts) is treated as
// transient.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusNotFound,
		status == http.StatusBadRequest:
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	default:
		// 429, 5xx and everything else worth another attempt.
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
}
