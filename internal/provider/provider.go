// Package provider implements the remote translation capability using
// HTTP API-based AI providers: any OpenAI-format chat completions endpoint
// and Google Gemini. Transient failures are retried with backoff inside the
// provider; callers only see the final outcome.
package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Provider defines the remote calls the translation pipeline consumes.
type Provider interface {
	// Translate sends a translation prompt and returns the translated text.
	Translate(ctx context.Context, prompt string) (string, error)

	// ExtractTerms sends a term-update prompt and returns the raw reply for
	// the glossary parser.
	ExtractTerms(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name for log output.
	Name() string
}

// Error classification. A call that fails with ErrTransient exhausted its
// retry budget on retryable conditions (rate limits, timeouts, 5xx); one
// that fails with ErrPermanent was rejected outright (bad key, bad request).
var (
	ErrTransient = errors.New("transient remote error")
	ErrPermanent = errors.New("permanent remote error")
)

// Config holds common configuration for providers. One provider instance is
// built per credential, so the key is fixed at construction.
type Config struct {
	Provider string // "openai" or "gemini"
	APIKey   string
	BaseURL  string // OpenAI-format endpoint override, empty for the default
	Model    string

	Timeout       time.Duration
	MaxRetries    int // translate budget; term extraction gets two more
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// DefaultConfig returns the retry and timeout defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:      "openai",
		Timeout:       10 * time.Minute,
		MaxRetries:    5,
		RetryDelay:    5 * time.Second,
		MaxRetryDelay: 60 * time.Second,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	d := DefaultConfig()
	if out.Timeout <= 0 {
		out.Timeout = d.Timeout
	}
	if out.MaxRetries <= 0 {
		out.MaxRetries = d.MaxRetries
	}
	if out.RetryDelay <= 0 {
		out.RetryDelay = d.RetryDelay
	}
	if out.MaxRetryDelay <= 0 {
		out.MaxRetryDelay = d.MaxRetryDelay
	}
	return &out
}

// New creates the configured provider.
func New(config *Config) (Provider, error) {
	if config == nil {
		return nil, fmt.Errorf("provider config is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch config.Provider {
	case "openai", "":
		return newOpenAIProvider(config.withDefaults())
	case "gemini":
		return newGeminiProvider(config.withDefaults())
	default:
		return nil, fmt.Errorf("unknown provider: %s", config.Provider)
	}
}

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripThinking removes <think>...</think> reasoning blocks some models
// prepend to their answer.
func stripThinking(text string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(text, ""))
}

// validateReply rejects empty or truncated replies so they go through the
// retry path instead of being written out as a translation.
func validateReply(text string) (string, error) {
	text = stripThinking(text)
	if len(strings.TrimSpace(text)) < 5 {
		return "", fmt.Errorf("%w: reply empty or too short (%d chars)", ErrTransient, len(text))
	}
	return text, nil
}
