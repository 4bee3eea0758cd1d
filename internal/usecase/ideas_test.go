package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/infrastructure/storage"
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

func crmProblem() domain.Problem {
	return domain.Problem{ID: "p-1", Title: "CRM is too complex", Category: "productivity"}
}

func TestGenerateUnknownFramework(t *testing.T) {
	t.Parallel()

	gen := NewIdeaGenerator(IdeaGeneratorDeps{})
	_, err := gen.Generate(context.Background(), "bogus", crmProblem(), "")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = gen.BatchGenerate(context.Background(), "bogus", []domain.Problem{crmProblem()}, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerateUnbundleTemplate(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	gen := NewIdeaGenerator(IdeaGeneratorDeps{Store: store})

	idea, err := gen.Generate(context.Background(), "unbundle", crmProblem(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.FrameworkUnbundle, idea.FrameworkType)
	assert.NotEmpty(t, idea.TechStack)
	assert.Equal(t, "SimpleCrm - Crm for Small Teams", idea.Title)
	assert.Contains(t, idea.Description, "simplified crm platform")
	assert.Equal(t, "p-1", idea.ProblemID)
	assert.NotEmpty(t, idea.ID)
	assert.False(t, idea.CreatedAt.IsZero())
	assert.Equal(t, 1, store.Ideas())
}

func TestGenerateTemplatesPopulateEveryField(t *testing.T) {
	t.Parallel()

	gen := NewIdeaGenerator(IdeaGeneratorDeps{})
	for _, ft := range domain.FrameworkTypes {
		t.Run(string(ft), func(t *testing.T) {
			idea, err := gen.Generate(context.Background(), string(ft), crmProblem(), "real-estate")
			require.NoError(t, err)
			assert.NotEmpty(t, idea.Title)
			assert.NotEmpty(t, idea.Description)
			assert.NotEmpty(t, idea.TargetAudience)
			assert.NotEmpty(t, idea.MonetizationModel)
			assert.NotEmpty(t, idea.TechStack)
			assert.NotEmpty(t, idea.MarketSize)
			assert.Contains(t, []string{"low", "medium", "high"}, idea.CompetitionLevel)
			assert.Len(t, idea.KeyFeatures, 4)
		})
	}
}

func TestGenerateNicheUsesIndustry(t *testing.T) {
	t.Parallel()

	gen := NewIdeaGenerator(IdeaGeneratorDeps{})
	idea, err := gen.Generate(context.Background(), "niche", crmProblem(), "real-estate")
	require.NoError(t, err)
	assert.Equal(t, "Real-EstateFlow - Crm for Real-Estate", idea.Title)
	assert.Equal(t, "Real-Estate-specific features", idea.KeyFeatures[0])

	idea, err = gen.Generate(context.Background(), "niche", crmProblem(), "")
	require.NoError(t, err)
	assert.Equal(t, "GeneralFlow - Crm for General", idea.Title)
}

func TestGenerateEmptyTitleUsesDefaultWord(t *testing.T) {
	t.Parallel()

	gen := NewIdeaGenerator(IdeaGeneratorDeps{})
	idea, err := gen.Generate(context.Background(), "api", domain.Problem{}, "")
	require.NoError(t, err)
	assert.Equal(t, "ProblemAPI - Problem as a Service", idea.Title)
}

func TestGenerateWithJSONAnswer(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{enabled: true, answer: "```json\n" + `{
  "title": "LeanCRM",
  "description": "A CRM with five screens.",
  "tech_stack": ["Go", "HTMX"],
  "competition_level": "LOW",
  "key_features": "Contacts, Deals"
}` + "\n```"}
	gen := NewIdeaGenerator(IdeaGeneratorDeps{Generator: stub})

	idea, err := gen.Generate(context.Background(), "unbundle", crmProblem(), "")
	require.NoError(t, err)
	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "Framework: Unbundle a Giant")
	assert.Contains(t, stub.prompts[0], "Industry: general")

	assert.Equal(t, "LeanCRM", idea.Title)
	assert.Equal(t, "A CRM with five screens.", idea.Description)
	if diff := cmp.Diff([]string{"Go", "HTMX"}, idea.TechStack); diff != "" {
		t.Fatalf("tech stack mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "low", idea.CompetitionLevel)
	assert.Equal(t, []string{"Contacts", "Deals"}, idea.KeyFeatures)
	assert.Equal(t, "Small businesses and startups", idea.TargetAudience)
}

func TestGenerateWithLineAnswer(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{enabled: true, answer: "Here you go:\n- **Title**: TinyCRM\nTarget audience: Freelancers\ntech_stack: Go, SQLite\ncompetition_level: fierce\n"}
	gen := NewIdeaGenerator(IdeaGeneratorDeps{Generator: stub})

	idea, err := gen.Generate(context.Background(), "generic", crmProblem(), "")
	require.NoError(t, err)
	assert.Equal(t, "TinyCRM", idea.Title)
	assert.Equal(t, "Freelancers", idea.TargetAudience)
	assert.Equal(t, []string{"Go", "SQLite"}, idea.TechStack)
	assert.Equal(t, domain.CompetitionMedium, idea.CompetitionLevel)
	assert.Equal(t, "Intelligent solution for crm is too complex. Uses modern technology to solve the problem effectively.", idea.Description)
}

func TestGenerateFallsBackOnGeneratorError(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{enabled: true, err: errors.New("quota exceeded")}
	gen := NewIdeaGenerator(IdeaGeneratorDeps{Generator: stub})

	idea, err := gen.Generate(context.Background(), "automation", crmProblem(), "")
	require.NoError(t, err)
	assert.Equal(t, "AutoCrm - Crm Automation", idea.Title)
	assert.Equal(t, "Automate CRM tasks and workflows. Save time and reduce manual work.", idea.Description)
}

func TestGenerateDisabledGeneratorNotCalled(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{answer: `{"title":"ignored"}`}
	gen := NewIdeaGenerator(IdeaGeneratorDeps{Generator: stub})
	idea, err := gen.Generate(context.Background(), "api", crmProblem(), "")
	require.NoError(t, err)
	assert.Empty(t, stub.prompts)
	assert.Equal(t, "CrmAPI - Crm as a Service", idea.Title)
}

func TestBatchGenerateCountsFailures(t *testing.T) {
	t.Parallel()

	gen := NewIdeaGenerator(IdeaGeneratorDeps{})
	res, err := gen.BatchGenerate(context.Background(), "api", []domain.Problem{
		crmProblem(),
		{ID: "blank"},
		{ID: "p-2", Title: "Invoices are slow"},
	}, "")
	require.NoError(t, err)
	assert.Len(t, res.Ideas, 2)
	assert.Equal(t, 1, res.Failed)
}

func TestCatalogs(t *testing.T) {
	t.Parallel()

	gen := NewIdeaGenerator(IdeaGeneratorDeps{})
	frameworks := gen.Frameworks()
	require.Len(t, frameworks, len(domain.FrameworkTypes))
	for i, f := range frameworks {
		assert.Equal(t, domain.FrameworkTypes[i], f.Type)
		assert.NotEmpty(t, f.Examples)
	}

	examples, err := gen.Examples("niche")
	require.NoError(t, err)
	assert.Contains(t, examples, "CRM for yoga studios")

	_, err = gen.Examples("bogus")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Len(t, gen.Industries(), 15)
}

func TestAnalyzeCompetitionAndMarket(t *testing.T) {
	t.Parallel()

	gen := NewIdeaGenerator(IdeaGeneratorDeps{})

	tests := []struct {
		title       string
		competition string
		tam         string
		som         string
	}{
		{"Simple invoicing", domain.CompetitionLow, "Medium ($50M - $100M TAM)", "$5M - $20M"},
		{"Enterprise Data Hub", domain.CompetitionHigh, "Large ($100M+ TAM)", "$10M - $50M"},
		{"Niche scheduler", domain.CompetitionMedium, "Small ($10M - $50M TAM)", "$1M - $10M"},
	}
	for _, tt := range tests {
		idea := domain.Idea{Title: tt.title}
		analysis := gen.AnalyzeCompetition(idea)
		assert.Equal(t, tt.competition, analysis.CompetitionLevel, tt.title)
		assert.Equal(t, "unknown", analysis.IdeaID)

		market := gen.EstimateMarket(idea)
		assert.Equal(t, tt.tam, market.TotalAddressableMarket, tt.title)
		assert.Equal(t, tt.som, market.ObtainableMarket, tt.title)
	}
}

func TestValidateIdeaScore(t *testing.T) {
	t.Parallel()

	gen := NewIdeaGenerator(IdeaGeneratorDeps{})

	tests := []struct {
		name  string
		idea  domain.Idea
		score int
		first string
	}{
		{
			name:  "enterprise subscription small stack",
			idea:  domain.Idea{ID: "i1", Title: "Enterprise CRM", TechStack: []string{"Go"}, MonetizationModel: "Subscription"},
			score: 20 + 25 + 20 + 20,
			first: "Strong idea with high potential",
		},
		{
			name:  "default market usage pricing",
			idea:  domain.Idea{Title: "Ledger", TechStack: []string{"a", "b", "c", "d"}, MonetizationModel: "Usage-based pricing"},
			score: 20 + 20 + 15 + 15,
			first: "Good idea with potential",
		},
		{
			name:  "large stack one-time",
			idea:  domain.Idea{Title: "Ledger", TechStack: []string{"a", "b", "c", "d", "e", "f"}, MonetizationModel: "one-time"},
			score: 20 + 20 + 10 + 10,
			first: "Good idea with potential",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gen.ValidateIdea(tt.idea)
			assert.Equal(t, tt.score, got.ValidationScore)
			require.NotEmpty(t, got.Recommendations)
			assert.Equal(t, tt.first, got.Recommendations[0])
		})
	}
}

func TestValidationRecommendationBands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Moderate potential", validationRecommendations(45)[0])
	assert.Equal(t, "Low validation score", validationRecommendations(39)[0])
	assert.Equal(t, "Good idea with potential", validationRecommendations(60)[0])
	assert.Equal(t, "Strong idea with high potential", validationRecommendations(80)[0])
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Real-Estate", titleCase("real-estate"))
	assert.Equal(t, "Crm", titleCase("CRM"))
	assert.Equal(t, "Non-Profit", titleCase("NON-profit"))
}
