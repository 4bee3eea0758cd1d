package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProblemRadar/internal/config"
	"ProblemRadar/internal/domain"
)

func TestMemoryIndexQueryOrdersByCosine(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.Upsert(ctx, "same", []float32{1, 0}, map[string]string{"title": "same"}))
	require.NoError(t, idx.Upsert(ctx, "near", []float32{1, 1}, nil))
	require.NoError(t, idx.Upsert(ctx, "far", []float32{0, 1}, nil))
	require.Error(t, idx.Upsert(ctx, "", []float32{1}, nil))

	matches, err := idx.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "same", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.Equal(t, "same", matches[0].Metadata["title"])
	assert.Equal(t, "near", matches[1].ID)
	assert.Equal(t, 3, idx.Len())
}

func TestCosineSimilarityMismatchedLengths(t *testing.T) {
	t.Parallel()

	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestHashEmbedderSharedVocabularyIsCloser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	emb := NewHashEmbedder(128)

	invoice, err := emb.Embed(ctx, "Invoice generation takes too much manual work")
	require.NoError(t, err)
	invoices, err := emb.Embed(ctx, "Manual invoice generation for freelancers")
	require.NoError(t, err)
	crm, err := emb.Embed(ctx, "Dashboards overwhelm analysts")
	require.NoError(t, err)

	require.Len(t, invoice, 128)
	assert.Greater(t, cosineSimilarity(invoice, invoices), cosineSimilarity(invoice, crm))

	zero, err := emb.Embed(ctx, "a an the")
	require.NoError(t, err)
	assert.Zero(t, cosineSimilarity(zero, invoice))
}

func TestNewEmbedderFallsBackToHash(t *testing.T) {
	t.Parallel()

	emb, err := NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "gemini"})
	require.NoError(t, err)
	assert.IsType(t, &HashEmbedder{}, emb)
}

func TestClientUpsertAndQuery(t *testing.T) {
	t.Parallel()

	var upserted []vectorRecord
	mux := http.NewServeMux()
	mux.HandleFunc("/vectors/upsert", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Key") != "k" {
			t.Errorf("missing api key header")
		}
		var body struct {
			Vectors   []vectorRecord `json:"vectors"`
			Namespace string         `json:"namespace"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Namespace != "problems" {
			t.Errorf("unexpected namespace %q", body.Namespace)
		}
		upserted = append(upserted, body.Vectors...)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"matches":[{"id":"3","score":0.91,"metadata":{"title":"x"}}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL+"/", "k", "problems")
	ctx := context.Background()
	require.NoError(t, c.Upsert(ctx, "1", []float32{0.5, 0.5}, map[string]string{"category": "finance"}))
	require.Len(t, upserted, 1)
	assert.Equal(t, "1", upserted[0].ID)

	matches, err := c.Query(ctx, []float32{0.5, 0.5}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "3", matches[0].ID)
	assert.InDelta(t, 0.91, matches[0].Score, 1e-9)
}

func TestClientUnexpectedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", "").Query(context.Background(), []float32{1}, 1)
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestGenAIEmbedderEmbed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/embed-test:") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[0.25,0.5,0.75]}]}`))
	}))
	defer srv.Close()

	emb, err := newGenAIEmbedder(context.Background(), config.EmbeddingConfig{APIKey: "secret", Model: "embed-test"}, srv.URL)
	require.NoError(t, err)

	vec, err := emb.Embed(context.Background(), "invoice automation")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.5, 0.75}, vec)
}

func TestGenAIEmbedderNoEmbeddings(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer srv.Close()

	emb, err := newGenAIEmbedder(context.Background(), config.EmbeddingConfig{APIKey: "secret", Model: "embed-test"}, srv.URL)
	require.NoError(t, err)

	_, err = emb.Embed(context.Background(), "anything")
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestNewEmbedderSelectsGenAI(t *testing.T) {
	t.Parallel()

	emb, err := NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "gemini", APIKey: "secret"})
	require.NoError(t, err)
	assert.IsType(t, &GenAIEmbedder{}, emb)
}
