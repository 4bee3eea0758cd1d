package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ProblemRadar/internal/config"
	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
	"ProblemRadar/internal/scanner"
)

const defaultAdapterTimeout = 10 * time.Second

// StrategySource implements ProblemSource via registered scanner strategies.
type StrategySource struct {
	registry       *scanner.Registry
	sites          []config.SiteConfig
	adapterTimeout time.Duration
	logger         *slog.Logger
}

var _ ports.ProblemSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, adapterTimeout time.Duration, log *slog.Logger) *StrategySource {
	if adapterTimeout <= 0 {
		adapterTimeout = defaultAdapterTimeout
	}
	return &StrategySource{
		registry:       reg,
		sites:          sites,
		adapterTimeout: adapterTimeout,
		logger:         log,
	}
}

// Sites returns the configured sites.
func (s *StrategySource) Sites() []config.SiteConfig {
	return s.sites
}

// FetchAll runs every configured site concurrently, each under its own
// timeout, and returns the results that settled before ctx expired.
// Failures are reported per site and never abort the others.
func (s *StrategySource) FetchAll(ctx context.Context) []domain.SourceResult {
	if s.registry == nil || len(s.sites) == 0 {
		return nil
	}

	s.debug("fetch all", "sites", len(s.sites))

	results := make(chan domain.SourceResult, len(s.sites))
	eg, egCtx := errgroup.WithContext(ctx)
	for _, site := range s.sites {
		eg.Go(func() error {
			results <- s.scanSite(egCtx, site)
			return nil
		})
	}
	go func() {
		_ = eg.Wait()
		close(results)
	}()

	collected := make([]domain.SourceResult, 0, len(s.sites))
	for {
		select {
		case res, ok := <-results:
			if !ok {
				s.debug("strategy source done", "sites", len(collected))
				return collected
			}
			collected = append(collected, res)
		case <-ctx.Done():
			s.warn("aggregation deadline reached", "settled", len(collected), "sites", len(s.sites))
			return collected
		}
	}
}

func (s *StrategySource) scanSite(ctx context.Context, site config.SiteConfig) domain.SourceResult {
	res := domain.SourceResult{Source: site.Name}

	strategy, err := s.registry.Resolve(site.Scanner)
	if err != nil {
		res.Err = fmt.Errorf("site %s: %w", site.Name, err)
		s.warn("resolve scanner failed", "site", site.Name, "scanner", site.Scanner, "error", err)
		return res
	}

	siteCtx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()

	started := time.Now()
	problems, err := strategy.Scan(siteCtx, scanner.Request{
		SiteName:   site.Name,
		Options:    site.Options,
		Categories: toScannerCategories(site.Categories),
	})
	if err != nil {
		res.Err = fmt.Errorf("scan site %s: %w", site.Name, err)
		s.warn("scan site failed", "site", site.Name, "error", err, "partial", len(problems))
	}

	for i := range problems {
		if problems[i].Source == "" {
			problems[i].Source = site.Name
		}
	}
	res.Problems = problems
	s.debug("site produced problems", "site", site.Name, "count", len(problems), "elapsed", time.Since(started))
	return res
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
