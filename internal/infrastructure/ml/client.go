package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

// Client talks to a Pinecone-style vector service over HTTP.
type Client struct {
	endpoint  string
	apiKey    string
	namespace string
	http      *http.Client
}

var _ ports.VectorIndex = (*Client)(nil)

type vectorRecord struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey, namespace string) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		apiKey:    apiKey,
		namespace: namespace,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Upsert stores one embedding under id.
func (c *Client) Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]string) error {
	payload := map[string]any{
		"vectors":   []vectorRecord{{ID: id, Values: embedding, Metadata: metadata}},
		"namespace": c.namespace,
	}
	return c.post(ctx, "/vectors/upsert", payload, nil)
}

// Query returns the k nearest stored vectors.
func (c *Client) Query(ctx context.Context, embedding []float32, k int) ([]ports.VectorMatch, error) {
	payload := map[string]any{
		"vector":          embedding,
		"topK":            k,
		"namespace":       c.namespace,
		"includeMetadata": true,
	}

	var resp struct {
		Matches []ports.VectorMatch `json:"matches"`
	}
	if err := c.post(ctx, "/query", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: do request: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("%w: unexpected status %s, close body: %v", domain.ErrUpstream, resp.Status, closeErr)
		}
		return fmt.Errorf("%w: unexpected status %s", domain.ErrUpstream, resp.Status)
	}

	if v == nil {
		if err := resp.Body.Close(); err != nil {
			return fmt.Errorf("close response body: %w", err)
		}
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
