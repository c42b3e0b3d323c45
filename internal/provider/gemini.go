package provider

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// geminiProvider talks to the Gemini API through the native SDK instead of
// an OpenAI-format relay.
type geminiProvider struct {
	client          *genai.Client
	model           string
	translatePolicy retryPolicy
	termsPolicy     retryPolicy
}

func newGeminiProvider(config *Config) (*geminiProvider, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiProvider{
		client:          client,
		model:           config.Model,
		translatePolicy: config.translatePolicy(),
		termsPolicy:     config.termsPolicy(),
	}, nil
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Translate(ctx context.Context, prompt string) (string, error) {
	return withRetry(ctx, p.translatePolicy, func(ctx context.Context) (string, error) {
		return p.generate(ctx, prompt, 0.1)
	})
}

func (p *geminiProvider) ExtractTerms(ctx context.Context, prompt string) (string, error) {
	return withRetry(ctx, p.termsPolicy, func(ctx context.Context) (string, error) {
		return p.generate(ctx, prompt, 0.01)
	})
}

func (p *geminiProvider) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	})
	if err != nil {
		return "", classifyGeminiError(err)
	}
	return validateReply(resp.Text())
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, err)
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}
