package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
	"ProblemRadar/internal/scanner"
)

// SeedSource serves the fixed fallback problem set. It is both a scanner and
// the aggregator's seed provider.
type SeedSource struct {
	mu     sync.RWMutex
	seeds  []domain.Problem
	path   string
	logger *slog.Logger
}

var (
	_ ports.SeedProvider = (*SeedSource)(nil)
	_ scanner.Scanner    = (*SeedSource)(nil)
)

type seedFile struct {
	Problems []domain.Problem `yaml:"problems"`
}

// NewSeedSource loads path when set and falls back to the built-in seeds.
func NewSeedSource(path string, log *slog.Logger) (*SeedSource, error) {
	s := &SeedSource{seeds: DefaultSeeds(), path: path, logger: log}
	if path == "" {
		return s, nil
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Name identifies the strategy inside the registry.
func (s *SeedSource) Name() string {
	return domain.SourceSeed
}

// Scan returns the seeds; it never fails.
func (s *SeedSource) Scan(context.Context, scanner.Request) ([]domain.Problem, error) {
	return s.Seeds(), nil
}

// Seeds returns a copy of the current seed set.
func (s *SeedSource) Seeds() []domain.Problem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Problem, len(s.seeds))
	copy(out, s.seeds)
	return out
}

func (s *SeedSource) reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	if len(file.Problems) == 0 {
		return fmt.Errorf("%w: seed file %s has no problems", domain.ErrValidation, s.path)
	}

	seeds := make([]domain.Problem, 0, len(file.Problems))
	for _, p := range file.Problems {
		if p.Source == "" {
			p.Source = domain.SourceSeed
		}
		seeds = append(seeds, domain.NewProblem(p))
	}

	s.mu.Lock()
	s.seeds = seeds
	s.mu.Unlock()
	return nil
}

// Watch reloads the seed file on change until ctx is cancelled. A file that
// fails to parse leaves the previous seeds in place.
func (s *SeedSource) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.path, err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.reload(); err != nil {
					s.warn("seed reload failed", "path", s.path, "error", err)
					continue
				}
				s.info("seeds reloaded", "path", s.path, "count", len(s.Seeds()))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.warn("seed watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (s *SeedSource) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *SeedSource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

// DefaultSeeds returns the built-in fallback problems.
func DefaultSeeds() []domain.Problem {
	raw := []domain.Problem{
		{
			ID:            "1",
			Title:         "Email marketing automation is too complex",
			Description:   "Small businesses struggle with setting up email marketing automation. The current tools are either too complex or too expensive for small teams.",
			Source:        domain.SourceReddit,
			SourceURL:     "https://reddit.com/r/SaaS/comments/example",
			Category:      "marketing",
			SeverityScore: 8.5,
			MentionCount:  15,
			Keywords:      []string{"email", "marketing", "automation", "complex", "small business"},
			CreatedAt:     seedTime("2024-01-15T10:30:00Z"),
		},
		{
			ID:            "2",
			Title:         "Project management tools don't work for remote teams",
			Description:   "Existing project management tools don't account for the unique challenges of remote work. Teams need better collaboration features and time tracking.",
			Source:        domain.SourceHackerNews,
			SourceURL:     "https://news.ycombinator.com/item?id=example",
			Category:      "productivity",
			SeverityScore: 7.8,
			MentionCount:  23,
			Keywords:      []string{"project management", "remote", "collaboration", "time tracking"},
			CreatedAt:     seedTime("2024-01-14T15:45:00Z"),
		},
		{
			ID:            "3",
			Title:         "Customer support software is too expensive for startups",
			Description:   "Startups need customer support tools but can't afford the enterprise pricing of existing solutions. There's a gap in the market for affordable, simple support software.",
			Source:        domain.SourceG2,
			SourceURL:     "https://www.g2.com/categories/customer-support",
			Category:      "customer-support",
			SeverityScore: 9.2,
			MentionCount:  31,
			Keywords:      []string{"customer support", "startup", "expensive", "affordable", "simple"},
			CreatedAt:     seedTime("2024-01-13T09:20:00Z"),
		},
		{
			ID:            "4",
			Title:         "Analytics dashboards are overwhelming for non-technical users",
			Description:   "Business users need analytics but find current dashboards too complex. They need simple, actionable insights without the technical complexity.",
			Source:        domain.SourceReddit,
			SourceURL:     "https://reddit.com/r/Entrepreneur/comments/example",
			Category:      "analytics",
			SeverityScore: 7.5,
			MentionCount:  12,
			Keywords:      []string{"analytics", "dashboard", "simple", "business", "insights"},
			CreatedAt:     seedTime("2024-01-12T14:15:00Z"),
		},
		{
			ID:            "5",
			Title:         "Invoice generation takes too much manual work",
			Description:   "Small businesses spend hours manually creating invoices. They need automated invoice generation that integrates with their existing tools.",
			Source:        domain.SourceHackerNews,
			SourceURL:     "https://news.ycombinator.com/item?id=example2",
			Category:      "finance",
			SeverityScore: 8.0,
			MentionCount:  18,
			Keywords:      []string{"invoice", "automation", "manual work", "small business", "integration"},
			CreatedAt:     seedTime("2024-01-11T11:30:00Z"),
		},
	}
	seeds := make([]domain.Problem, 0, len(raw))
	for _, p := range raw {
		seeds = append(seeds, domain.NewProblem(p))
	}
	return seeds
}

func seedTime(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}
