package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ProblemRadar/internal/config"
	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements ports.ContentGenerator with the Google GenAI SDK.
type GeminiClient struct {
	client       *genai.Client
	model        string
	systemPrompt string
}

var _ ports.ContentGenerator = (*GeminiClient)(nil)

// NewGeminiClient creates the SDK client. An empty API key is an error.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	return newGeminiClient(ctx, cfg, "")
}

// newGeminiClient overrides the API base URL when baseURL is set.
func newGeminiClient(ctx context.Context, cfg config.LLMConfig, baseURL string) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model, systemPrompt: cfg.SystemPrompt}, nil
}

// Enabled reports whether the SDK client was created.
func (g *GeminiClient) Enabled() bool {
	return g != nil && g.client != nil
}

// Complete runs a single-turn generation and returns the concatenated text parts.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if !g.Enabled() {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(safePrompt(g.systemPrompt), genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate: %v", domain.ErrUpstream, err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: gemini returned no text", domain.ErrUpstream)
	}
	return text, nil
}
