package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/scanner"
)

func TestDefaultSeeds(t *testing.T) {
	t.Parallel()

	seeds := DefaultSeeds()
	require.Len(t, seeds, 5)
	assert.Equal(t, "Customer support software is too expensive for startups", seeds[2].Title)
	assert.Equal(t, 9.2, seeds[2].SeverityScore)
	assert.Equal(t, "customer-support", seeds[2].Category)
	for _, p := range seeds {
		assert.NotEmpty(t, p.Keywords, p.ID)
		assert.False(t, p.CreatedAt.IsZero(), p.ID)
	}
}

func TestSeedSourceScanNeverFails(t *testing.T) {
	t.Parallel()

	s, err := NewSeedSource("", nil)
	require.NoError(t, err)

	problems, err := s.Scan(context.Background(), scanner.Request{})
	require.NoError(t, err)
	assert.Len(t, problems, 5)

	problems[0].Title = "mutated"
	assert.NotEqual(t, "mutated", s.Seeds()[0].Title)
}

const seedYAML = `problems:
  - id: s1
    title: Scheduling shifts is chaotic
    description: Restaurants juggle shifts in group chats.
    category: productivity
    severity_score: 12
    mention_count: 4
    keywords: [shifts, scheduling]
    created_at: 2024-02-01T10:00:00Z
`

func TestSeedSourceLoadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	s, err := NewSeedSource(path, nil)
	require.NoError(t, err)

	seeds := s.Seeds()
	require.Len(t, seeds, 1)
	assert.Equal(t, "s1", seeds[0].ID)
	assert.Equal(t, domain.SourceSeed, seeds[0].Source)
	assert.Equal(t, 10.0, seeds[0].SeverityScore)
}

func TestSeedSourceRejectsEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("problems: []\n"), 0o600))

	_, err := NewSeedSource(path, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSeedSourceWatchReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	s, err := NewSeedSource(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	updated := seedYAML + `  - id: s2
    title: Inventory counts drift
    description: Retail stock sheets never match the shelves.
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	require.Eventually(t, func() bool {
		return len(s.Seeds()) == 2
	}, 5*time.Second, 20*time.Millisecond)
}
