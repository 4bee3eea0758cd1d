package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
	"ProblemRadar/internal/scoring"
)

const (
	trendingMinSeverity = 7.0
	trendingMinMentions = 5
	trendingLimit       = 10

	defaultSimilar = 5
	maxSimilar     = 20
)

// SourceInfo describes one configured problem source for the catalog endpoint.
type SourceInfo struct {
	Name        string   `json:"name"`
	Scanner     string   `json:"scanner"`
	Description string   `json:"description"`
	Categories  []string `json:"categories,omitempty"`
}

var sourceDescriptions = map[string]string{
	domain.SourceReddit:     "Community discussions and pain points",
	domain.SourceHackerNews: "Tech community discussions and Show HN posts",
	domain.SourceG2:         "Negative reviews from SaaS review platform",
	domain.SourceResearch:   "Generated research on configured topics",
	domain.SourceSeed:       "Curated fallback problems",
}

// DescribeSource builds the catalog entry for a configured site.
func DescribeSource(name, scannerName string, categories []string) SourceInfo {
	desc, ok := sourceDescriptions[scannerName]
	if !ok {
		desc = "Custom problem source"
	}
	return SourceInfo{
		Name:        name,
		Scanner:     scannerName,
		Description: desc,
		Categories:  categories,
	}
}

// SimilarProblem is one nearest-neighbour hit from the vector index.
type SimilarProblem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Source   string  `json:"source,omitempty"`
	Score    float64 `json:"score"`
}

// ProblemServiceDeps wires the problem query use case.
type ProblemServiceDeps struct {
	Aggregator *Aggregator
	Store      ports.RecordStore
	Embedder   ports.Embedder
	Index      ports.VectorIndex
	Sources    []SourceInfo
	Logger     *slog.Logger
}

// ProblemService answers every problem-oriented query.
type ProblemService struct {
	aggregator *Aggregator
	store      ports.RecordStore
	embedder   ports.Embedder
	index      ports.VectorIndex
	sources    []SourceInfo
	logger     *slog.Logger
}

// NewProblemService constructs the query use case.
func NewProblemService(deps ProblemServiceDeps) *ProblemService {
	return &ProblemService{
		aggregator: deps.Aggregator,
		store:      deps.Store,
		embedder:   deps.Embedder,
		index:      deps.Index,
		sources:    deps.Sources,
		logger:     deps.Logger,
	}
}

// List proxies to the aggregator.
func (s *ProblemService) List(ctx context.Context, filters domain.ProblemFilters) ([]domain.Problem, error) {
	return s.aggregator.Aggregate(ctx, filters)
}

// Trending returns the hottest problems by severity times mentions.
func (s *ProblemService) Trending(ctx context.Context) []domain.Problem {
	return Trending(s.aggregator.All(ctx))
}

// Trending picks problems with severity >= 7 and at least 5 mentions, ordered
// by severity*mentions descending, top 10.
func Trending(problems []domain.Problem) []domain.Problem {
	hot := make([]domain.Problem, 0, len(problems))
	for _, p := range problems {
		if p.SeverityScore >= trendingMinSeverity && p.MentionCount >= trendingMinMentions {
			hot = append(hot, p)
		}
	}
	sort.SliceStable(hot, func(i, j int) bool {
		return heat(hot[i]) > heat(hot[j])
	})
	if len(hot) > trendingLimit {
		hot = hot[:trendingLimit]
	}
	return hot
}

func heat(p domain.Problem) float64 {
	return p.SeverityScore * float64(p.MentionCount)
}

// Search matches query as a case-insensitive substring of title, description
// or any keyword.
func (s *ProblemService) Search(ctx context.Context, query string, limit int) ([]domain.Problem, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	switch {
	case limit < 0:
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrValidation)
	case limit == 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	matched := []domain.Problem{}
	for _, p := range s.aggregator.All(ctx) {
		if len(matched) == limit {
			break
		}
		if matchesQuery(p, query) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func matchesQuery(p domain.Problem, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) || strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	for _, kw := range p.Keywords {
		if strings.Contains(kw, query) {
			return true
		}
	}
	return false
}

// Get looks the problem up in the store first and falls back to a fresh
// aggregation.
func (s *ProblemService) Get(ctx context.Context, id string) (domain.Problem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Problem{}, fmt.Errorf("%w: problem id is required", domain.ErrValidation)
	}

	if s.store != nil {
		p, err := s.store.FindProblem(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.warn("find problem failed", "id", id, "error", err)
		}
	}

	for _, p := range s.aggregator.All(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Problem{}, fmt.Errorf("%w: problem %s", domain.ErrNotFound, id)
}

// Similar returns the nearest indexed problems to id, excluding id itself.
func (s *ProblemService) Similar(ctx context.Context, id string, k int) ([]SimilarProblem, error) {
	switch {
	case k < 0:
		return nil, fmt.Errorf("%w: k must not be negative", domain.ErrValidation)
	case k == 0:
		k = defaultSimilar
	case k > maxSimilar:
		k = maxSimilar
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.embedder == nil || s.index == nil {
		return []SimilarProblem{}, nil
	}

	vec, err := s.embedder.Embed(ctx, ProblemText(p))
	if err != nil {
		return nil, fmt.Errorf("embed problem %s: %w", id, err)
	}
	matches, err := s.index.Query(ctx, vec, k+1)
	if err != nil {
		return nil, fmt.Errorf("query similar to %s: %w", id, err)
	}

	out := make([]SimilarProblem, 0, k)
	for _, m := range matches {
		if m.ID == p.ID {
			continue
		}
		if len(out) == k {
			break
		}
		out = append(out, SimilarProblem{
			ID:       m.ID,
			Title:    m.Metadata["title"],
			Category: m.Metadata["category"],
			Source:   m.Metadata["source"],
			Score:    m.Score,
		})
	}
	return out, nil
}

// Categories returns the closed category set.
func (s *ProblemService) Categories() []string {
	return scoring.Categories()
}

// Sources returns the configured source catalog.
func (s *ProblemService) Sources() []SourceInfo {
	out := make([]SourceInfo, len(s.sources))
	copy(out, s.sources)
	return out
}

// ProblemText is the text embedded for similarity search.
func ProblemText(p domain.Problem) string {
	parts := []string{p.Title, p.Description}
	if len(p.Keywords) > 0 {
		parts = append(parts, strings.Join(p.Keywords, " "))
	}
	return strings.Join(parts, " ")
}

func (s *ProblemService) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
