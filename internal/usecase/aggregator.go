package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

const (
	// DefaultLimit is used when a caller does not pass a positive limit.
	DefaultLimit = 20
	// MaxLimit caps every listing.
	MaxLimit = 100
)

// AggregatorDeps wires the problem sources into the aggregator.
type AggregatorDeps struct {
	Source         ports.ProblemSource
	Seeds          ports.SeedProvider
	OverallTimeout time.Duration
	DefaultLimit   int
	Logger         *slog.Logger
}

// Aggregator fans out to every source adapter, merges the results with the
// seed set and applies filters.
type Aggregator struct {
	source         ports.ProblemSource
	seeds          ports.SeedProvider
	overallTimeout time.Duration
	defaultLimit   int
	logger         *slog.Logger
}

// NewAggregator constructs the aggregation use case.
func NewAggregator(deps AggregatorDeps) *Aggregator {
	limit := deps.DefaultLimit
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return &Aggregator{
		source:         deps.Source,
		seeds:          deps.Seeds,
		overallTimeout: deps.OverallTimeout,
		defaultLimit:   limit,
		logger:         deps.Logger,
	}
}

// Aggregate returns the merged, filtered and sorted problem list. Only invalid
// filters produce an error; adapter failures are logged and skipped.
func (a *Aggregator) Aggregate(ctx context.Context, filters domain.ProblemFilters) ([]domain.Problem, error) {
	filters, err := a.normalizeFilters(filters)
	if err != nil {
		return nil, err
	}

	problems := a.All(ctx)
	filtered := make([]domain.Problem, 0, len(problems))
	for _, p := range problems {
		if matchesFilters(p, filters) {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) > filters.Limit {
		filtered = filtered[:filters.Limit]
	}
	return filtered, nil
}

// All collects every adapter result plus the seed set, deduplicated and
// sorted, without filtering or truncation. The result is never empty while a
// seed provider is configured.
func (a *Aggregator) All(ctx context.Context) []domain.Problem {
	if a.overallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.overallTimeout)
		defer cancel()
	}

	var collected []domain.Problem
	if a.source != nil {
		started := time.Now()
		results := a.source.FetchAll(ctx)
		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
			}
			collected = append(collected, res.Problems...)
		}
		a.debug("sources settled", "results", len(results), "failed", failed, "problems", len(collected), "elapsed", time.Since(started))
	}

	if a.seeds != nil {
		collected = append(collected, a.seeds.Seeds()...)
	}

	merged := dedupe(collected)
	sortProblems(merged)
	return merged
}

func (a *Aggregator) normalizeFilters(f domain.ProblemFilters) (domain.ProblemFilters, error) {
	switch {
	case f.Limit < 0:
		return f, fmt.Errorf("%w: limit must not be negative", domain.ErrValidation)
	case f.Limit == 0:
		f.Limit = a.defaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	if f.MinSeverity != nil && (math.IsNaN(*f.MinSeverity) || *f.MinSeverity < 0 || *f.MinSeverity > 10) {
		return f, fmt.Errorf("%w: min_severity must be within [0, 10]", domain.ErrValidation)
	}
	f.Category = strings.TrimSpace(f.Category)
	f.Keywords = strings.TrimSpace(f.Keywords)
	return f, nil
}

func matchesFilters(p domain.Problem, f domain.ProblemFilters) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinSeverity != nil && p.SeverityScore < *f.MinSeverity {
		return false
	}
	if f.Keywords != "" && !matchesKeywords(p.Keywords, f.Keywords) {
		return false
	}
	return true
}

// matchesKeywords reports whether any filter term occurs inside one of the
// problem keywords.
func matchesKeywords(keywords []string, filter string) bool {
	for _, term := range strings.Fields(strings.ToLower(filter)) {
		for _, kw := range keywords {
			if strings.Contains(strings.ToLower(kw), term) {
				return true
			}
		}
	}
	return false
}

// dedupe drops repeated ids first and then repeated normalized titles. When two
// records collide the one with the higher severity survives; ties keep the
// earlier record.
func dedupe(problems []domain.Problem) []domain.Problem {
	return dedupeBy(dedupeBy(problems, func(p domain.Problem) string {
		return p.ID
	}), func(p domain.Problem) string {
		return normalizeTitle(p.Title)
	})
}

func dedupeBy(problems []domain.Problem, key func(domain.Problem) string) []domain.Problem {
	index := make(map[string]int, len(problems))
	out := make([]domain.Problem, 0, len(problems))
	for _, p := range problems {
		k := key(p)
		if k == "" {
			out = append(out, p)
			continue
		}
		if i, ok := index[k]; ok {
			if p.SeverityScore > out[i].SeverityScore {
				out[i] = p
			}
			continue
		}
		index[k] = len(out)
		out = append(out, p)
	}
	return out
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// sortProblems orders by severity desc, then recency, then id.
func sortProblems(problems []domain.Problem) {
	sort.SliceStable(problems, func(i, j int) bool {
		a, b := problems[i], problems[j]
		if a.SeverityScore != b.SeverityScore {
			return a.SeverityScore > b.SeverityScore
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
