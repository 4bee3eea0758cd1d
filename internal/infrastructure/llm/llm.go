// Package llm adapts hosted text-generation models to ports.ContentGenerator.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ProblemRadar/internal/config"
	"ProblemRadar/internal/ports"
)

// Provider names accepted in llm.provider.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Disabled never calls out; idea generation falls back to templates.
type Disabled struct{}

var _ ports.ContentGenerator = Disabled{}

// Enabled always reports false.
func (Disabled) Enabled() bool { return false }

// Complete always fails.
func (Disabled) Complete(context.Context, string) (string, error) {
	return "", fmt.Errorf("content generation is disabled")
}

// New selects a generator by provider. Missing credentials yield Disabled.
func New(ctx context.Context, cfg config.LLMConfig) (ports.ContentGenerator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == ProviderNone || cfg.APIKey == "" {
		return Disabled{}, nil
	}

	switch provider {
	case ProviderOpenAI, "chatgpt":
		return NewChatGPTClient(cfg), nil
	case ProviderAnthropic, "claude":
		return NewAnthropicClient(cfg), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func httpClient(cfg config.LLMConfig) *http.Client {
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
