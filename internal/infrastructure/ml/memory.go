package ml

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"ProblemRadar/internal/ports"
)

type entry struct {
	embedding []float32
	metadata  map[string]string
}

// MemoryIndex is an in-process cosine-similarity index.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]entry
}

var _ ports.VectorIndex = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]entry)}
}

// Upsert stores or replaces the embedding for id.
func (m *MemoryIndex) Upsert(_ context.Context, id string, embedding []float32, metadata map[string]string) error {
	if id == "" {
		return fmt.Errorf("vector id is required")
	}
	stored := make([]float32, len(embedding))
	copy(stored, embedding)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = entry{embedding: stored, metadata: metadata}
	return nil
}

// Query ranks every stored vector by cosine similarity; ties break on id.
func (m *MemoryIndex) Query(_ context.Context, embedding []float32, k int) ([]ports.VectorMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]ports.VectorMatch, 0, len(m.entries))
	for id, e := range m.entries {
		matches = append(matches, ports.VectorMatch{
			ID:       id,
			Score:    cosineSimilarity(embedding, e.embedding),
			Metadata: e.metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Len reports the number of stored vectors.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
