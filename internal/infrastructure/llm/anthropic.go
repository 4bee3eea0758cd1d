package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ProblemRadar/internal/config"
	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	defaultAnthropicModel    = "claude-sonnet-4-5-20250929"
	anthropicVersion         = "2023-06-01"
	anthropicMaxTokens       = 2000
)

// AnthropicClient implements ports.ContentGenerator over the Messages API.
type AnthropicClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.ContentGenerator = (*AnthropicClient)(nil)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.LLMConfig) *AnthropicClient {
	endpoint := cfg.Endpoint
	if endpoint == "" || endpoint == defaultOpenAIEndpoint {
		endpoint = defaultAnthropicEndpoint
	}
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultAnthropicModel
	}
	return &AnthropicClient{
		endpoint:     endpoint,
		model:        model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   httpClient(cfg),
	}
}

// Enabled reports whether an API key is configured.
func (a *AnthropicClient) Enabled() bool {
	return a != nil && a.apiKey != ""
}

// Complete sends the prompt as a single user turn and returns the first text block.
func (a *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("anthropic client misconfigured")
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: anthropicMaxTokens,
		System:    safePrompt(a.systemPrompt),
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic request: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read anthropic response: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: anthropic error %s: %s", domain.ErrUpstream, resp.Status, truncate(string(raw), 1024))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode anthropic response: %v", domain.ErrUpstream, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: anthropic %s: %s", domain.ErrUpstream, parsed.Error.Type, parsed.Error.Message)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: anthropic returned no text", domain.ErrUpstream)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
