package ml

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"google.golang.org/genai"

	"ProblemRadar/internal/config"
	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
	"ProblemRadar/internal/scoring"
)

const defaultHashDimensions = 256

// HashEmbedder maps keyword tokens into a fixed-size bag-of-words vector.
// It needs no network and gives stable similarity for shared vocabulary.
type HashEmbedder struct {
	dims int
}

var _ ports.Embedder = (*HashEmbedder)(nil)

// NewHashEmbedder builds an embedder with dims buckets.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = defaultHashDimensions
	}
	return &HashEmbedder{dims: dims}
}

// Embed returns an L2-normalised vector; text without keywords is the zero vector.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dims)
	tokens := scoring.Tokens(text)
	for _, token := range tokens {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(token))
		vec[int(hasher.Sum32()%uint32(h.dims))]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

// GenAIEmbedder generates embeddings with Gemini embedding models.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

var _ ports.Embedder = (*GenAIEmbedder)(nil)

// NewGenAIEmbedder creates the SDK client.
func NewGenAIEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (*GenAIEmbedder, error) {
	return newGenAIEmbedder(ctx, cfg, "")
}

func newGenAIEmbedder(ctx context.Context, cfg config.EmbeddingConfig, baseURL string) (*GenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-embedding-001"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIEmbedder{client: client, model: model}, nil
}

// Embed requests a semantic-similarity embedding for text.
func (g *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	result, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: genai embed: %v", domain.ErrUpstream, err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: genai returned no embeddings", domain.ErrUpstream)
	}
	return result.Embeddings[0].Values, nil
}

// NewEmbedder selects an embedder by provider; unknown or unconfigured providers fall back to hashing.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (ports.Embedder, error) {
	switch cfg.Provider {
	case "gemini", "genai":
		if cfg.APIKey == "" {
			return NewHashEmbedder(cfg.Dimensions), nil
		}
		return NewGenAIEmbedder(ctx, cfg)
	default:
		return NewHashEmbedder(cfg.Dimensions), nil
	}
}
