package classifier

import (
	"context"
	"fmt"
	"strings"
)

// LLMProvider is an interface for LLM API providers.
type LLMProvider interface {
	// Complete makes a single-turn text completion call.
	Complete(ctx context.Context, request LLMRequest) (*LLMResponse, error)

	// Provider returns the provider name.
	Provider() string
}

// LLMRequest contains the request parameters for an LLM call.
type LLMRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// LLMResponse contains the response from the LLM.
type LLMResponse struct {
	Content string
	Usage   *TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// NewProvider creates an LLM provider by name.
func NewProvider(provider, apiKey string) (LLMProvider, error) {
	switch provider {
	case "anthropic":
		return NewAnthropicProvider(apiKey), nil
	case "openai":
		return NewOpenAIProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// IsRetryableError checks if a provider error should be retried.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	// Network errors
	if strings.Contains(msg, "ECONNRESET") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}

	// Rate limits
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") {
		return true
	}

	// Server errors
	for _, code := range []string{"500", "502", "503", "504"} {
		if strings.Contains(msg, code) {
			return true
		}
	}

	return false
}
