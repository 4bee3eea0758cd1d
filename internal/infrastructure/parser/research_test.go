package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/scanner"
)

type stubGenerator struct {
	enabled bool
	answer  string
	err     error
	prompts []string
}

func (s *stubGenerator) Enabled() bool { return s.enabled }

func (s *stubGenerator) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.answer, s.err
}

func TestResearchScannerParsesProblemLines(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{enabled: true, answer: strings.Join([]string{
		"Here you go:",
		"1. PROBLEM: Payroll for contractors is manual | Freelance payroll is a frustrating spreadsheet exercise.",
		"- PROBLEM: Scheduling across time zones",
		"PROBLEM:  | empty title is skipped",
		"PROBLEM: Third one | dropped by perTopic",
	}, "\n")}

	problems, err := NewResearchScanner(gen).Scan(context.Background(), scanner.Request{
		SiteName:   "research",
		Categories: []scanner.Category{{Name: "small business"}},
		Options:    map[string]string{"perTopic": "2"},
	})
	require.NoError(t, err)
	require.Len(t, problems, 2)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"small business"`)

	assert.Equal(t, "Payroll for contractors is manual", problems[0].Title)
	assert.Equal(t, "Freelance payroll is a frustrating spreadsheet exercise.", problems[0].Description)
	assert.Equal(t, domain.SourceResearch, problems[0].Source)
	assert.True(t, strings.HasPrefix(problems[0].ID, "research_"))
	assert.Equal(t, "Scheduling across time zones", problems[1].Title)
	assert.Empty(t, problems[1].Description)
}

func TestResearchScannerIDsAreStable(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{enabled: true, answer: "PROBLEM: Payroll for contractors is manual | desc\nPROBLEM: Scheduling across time zones"}
	req := scanner.Request{Categories: []scanner.Category{{Name: "small business"}, {Name: "agencies"}}}
	scan := NewResearchScanner(gen)

	first, err := scan.Scan(context.Background(), req)
	require.NoError(t, err)
	second, err := scan.Scan(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first, 4)
	require.Len(t, second, 4)

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.NotEqual(t, first[0].ID, first[1].ID)
	assert.NotEqual(t, first[0].ID, first[2].ID, "same title under another topic")
}

func TestResearchScannerDisabledGenerator(t *testing.T) {
	t.Parallel()

	problems, err := NewResearchScanner(&stubGenerator{}).Scan(context.Background(), scanner.Request{
		Categories: []scanner.Category{{Name: "anything"}},
	})
	require.NoError(t, err)
	assert.Nil(t, problems)

	problems, err = NewResearchScanner(nil).Scan(context.Background(), scanner.Request{})
	require.NoError(t, err)
	assert.Nil(t, problems)
}

func TestResearchScannerGeneratorFailure(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{enabled: true, err: errors.New("quota")}
	_, err := NewResearchScanner(gen).Scan(context.Background(), scanner.Request{
		Categories: []scanner.Category{{Name: "ops"}},
	})
	require.Error(t, err)
}
