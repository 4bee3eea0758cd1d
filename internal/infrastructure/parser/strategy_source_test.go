package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ProblemRadar/internal/config"
	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/scanner"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type fakeScanner struct {
	name     string
	problems []domain.Problem
	err      error
	delay    time.Duration
}

func (f fakeScanner) Name() string { return f.name }

func (f fakeScanner) Scan(ctx context.Context, _ scanner.Request) ([]domain.Problem, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.problems, f.err
}

func registryOf(scanners ...scanner.Scanner) *scanner.Registry {
	reg := scanner.NewRegistry()
	for _, s := range scanners {
		reg.Register(s)
	}
	return reg
}

func TestStrategySourceFetchAllCollectsEverySite(t *testing.T) {
	t.Parallel()

	reg := registryOf(
		fakeScanner{name: "ok", problems: []domain.Problem{{ID: "a", Title: "A"}}},
		fakeScanner{name: "broken", err: errors.New("boom")},
	)
	sites := []config.SiteConfig{
		{Name: "first", Scanner: "ok"},
		{Name: "second", Scanner: "broken"},
		{Name: "third", Scanner: "missing"},
	}

	results := NewStrategySource(reg, sites, time.Second, nil).FetchAll(context.Background())
	require.Len(t, results, 3)

	bySource := map[string]domain.SourceResult{}
	for _, res := range results {
		bySource[res.Source] = res
	}
	require.NoError(t, bySource["first"].Err)
	require.Len(t, bySource["first"].Problems, 1)
	assert.Equal(t, "first", bySource["first"].Problems[0].Source)
	assert.Error(t, bySource["second"].Err)
	assert.Error(t, bySource["third"].Err)
}

func TestStrategySourceAdapterTimeout(t *testing.T) {
	t.Parallel()

	reg := registryOf(
		fakeScanner{name: "slow", delay: time.Minute},
		fakeScanner{name: "fast", problems: []domain.Problem{{ID: "x"}}},
	)
	sites := []config.SiteConfig{{Name: "slow", Scanner: "slow"}, {Name: "fast", Scanner: "fast"}}

	started := time.Now()
	results := NewStrategySource(reg, sites, 50*time.Millisecond, nil).FetchAll(context.Background())
	assert.Less(t, time.Since(started), 5*time.Second)
	require.Len(t, results, 2)

	for _, res := range results {
		if res.Source == "slow" {
			assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
		}
	}
}

func TestStrategySourceOverallDeadline(t *testing.T) {
	t.Parallel()

	reg := registryOf(fakeScanner{name: "slow", delay: time.Minute})
	sites := []config.SiteConfig{{Name: "slow", Scanner: "slow"}}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	results := NewStrategySource(reg, sites, time.Minute, nil).FetchAll(ctx)
	assert.LessOrEqual(t, len(results), 1)
}

func TestStrategySourceWithoutSites(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NewStrategySource(scanner.NewRegistry(), nil, 0, nil).FetchAll(context.Background()))
}
