// Package ai wraps the Anthropic API for planning-document generation. Every
// feature that uses it degrades to a manual template when no provider is
// configured, so the workflow never depends on network access.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// ErrNotConfigured is returned when AI assistance is requested but no
// provider or API key is configured. Callers treat it as "fall back to the
// manual template", not as a failure.
var ErrNotConfigured = errors.New("ai provider not configured")

// Provider generates text completions for planning documents.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type anthropicProvider struct {
	client         anthropic.Client
	model          anthropic.Model
	maxTokens      int64
	maxElapsedTime time.Duration
}

// NewProvider builds a Provider from the AI config block. It returns
// ErrNotConfigured when the provider is "none", empty, or the API key
// environment variable is unset.
func NewProvider(cfg models.AIConfig) (Provider, error) {
	if cfg.Provider == "" || cfg.Provider == "none" {
		return nil, ErrNotConfigured
	}
	if cfg.Provider != "anthropic" {
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}

	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "ANTHROPIC_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrNotConfigured, keyEnv)
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &anthropicProvider{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:          anthropic.Model(cfg.Model),
		maxTokens:      maxTokens,
		maxElapsedTime: 2 * time.Minute,
	}, nil
}

// Complete sends a single-turn message and returns the text of the first
// content block. Rate limits, server errors, and network timeouts are
// retried with exponential backoff; everything else fails immediately.
func (p *anthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var text string
	operation := func() error {
		message, err := p.client.Messages.New(ctx, params)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(message.Content) == 0 {
			return backoff.Permanent(fmt.Errorf("unexpected response: no content blocks"))
		}
		block := message.Content[0]
		if block.Type != "text" {
			return backoff.Permanent(fmt.Errorf("unexpected response: first block is %s, not text", block.Type))
		}
		text = block.Text
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxElapsedTime = p.maxElapsedTime

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}
	return text, nil
}

// isRetryable reports whether an API error is worth retrying: rate limits,
// server-side failures, and network timeouts are; context cancellation and
// client errors are not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return false
}
