package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/infrastructure/objectstore"
	"ProblemRadar/internal/infrastructure/storage"
	"ProblemRadar/internal/infrastructure/tracking"
)

type failingStorage struct{}

func (failingStorage) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("bucket unavailable")
}

func newToolkit(t *testing.T) (*ValidationToolkit, *storage.MemoryStore, string) {
	t.Helper()
	root := t.TempDir()
	fs, err := objectstore.NewFilesystem(root, "http://localhost:8000/pages")
	require.NoError(t, err)
	store := storage.NewMemoryStore()
	toolkit := NewValidationToolkit(ValidationToolkitDeps{
		Store:   store,
		Storage: fs,
		Tracker: tracking.NewMemoryTracker(),
	})
	return toolkit, store, root
}

func sampleIdea() domain.Idea {
	return domain.Idea{
		ID:                "idea-1",
		Title:             "SimpleCrm - Crm for Small Teams",
		Description:       "A simplified crm platform.",
		TargetAudience:    "Small businesses and startups",
		MonetizationModel: "Subscription-based with tiered pricing",
		KeyFeatures:       []string{"Easy setup", "Affordable pricing"},
		Keywords:          []string{"contacts", "complex", "small", "teams"},
	}
}

func TestCreateSurvey(t *testing.T) {
	t.Parallel()

	toolkit, store, _ := newToolkit(t)
	survey, err := toolkit.CreateSurvey(context.Background(), SurveyRequest{
		SurveyType:      "problem_validation",
		Idea:            sampleIdea(),
		CustomQuestions: []domain.SurveyQuestion{{ID: "team_size", Type: "text", Question: "How big is your team?"}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(survey.ID, "survey_"))
	assert.Equal(t, "Problem Validation Survey", survey.Title)
	assert.Len(t, survey.Questions, 5)
	assert.Equal(t, domain.StatusActive, survey.Status)

	stored, err := store.FindValidation(context.Background(), survey.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ArtifactSurvey, stored.Type)
	assert.Equal(t, "idea-1", stored.IdeaID)

	_, err = toolkit.CreateSurvey(context.Background(), SurveyRequest{SurveyType: "nps"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = toolkit.CreateSurvey(context.Background(), SurveyRequest{
		SurveyType:      "solution_validation",
		CustomQuestions: []domain.SurveyQuestion{{Type: "text"}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubmitSurveyResponse(t *testing.T) {
	t.Parallel()

	toolkit, _, _ := newToolkit(t)
	ctx := context.Background()
	survey, err := toolkit.CreateSurvey(ctx, SurveyRequest{SurveyType: "problem_validation", Idea: sampleIdea()})
	require.NoError(t, err)

	_, err = toolkit.SubmitSurveyResponse(ctx, survey.ID, domain.SurveyResponse{WillingnessToPay: 4})
	require.NoError(t, err)
	got, err := toolkit.SubmitSurveyResponse(ctx, survey.ID, domain.SurveyResponse{WillingnessToPay: 2, Answers: map[string]any{"current_solution": "spreadsheets"}})
	require.NoError(t, err)

	assert.Equal(t, 2, got.Results[resultsTotalKey])
	assert.InDelta(t, 3.0, got.Results[resultsAvgWillingness], 1e-9)
	assert.Len(t, got.Results[resultsResponsesKey], 2)

	_, err = toolkit.SubmitSurveyResponse(ctx, survey.ID, domain.SurveyResponse{WillingnessToPay: 9})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = toolkit.SubmitSurveyResponse(ctx, "survey_missing", domain.SurveyResponse{WillingnessToPay: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitSurveyResponseConcurrent(t *testing.T) {
	t.Parallel()

	toolkit, _, _ := newToolkit(t)
	ctx := context.Background()
	survey, err := toolkit.CreateSurvey(ctx, SurveyRequest{SurveyType: "problem_validation", Idea: sampleIdea()})
	require.NoError(t, err)

	const respondents = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < respondents; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := toolkit.SubmitSurveyResponse(ctx, survey.ID, domain.SurveyResponse{WillingnessToPay: 4})
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	got, err := toolkit.SurveyResults(ctx, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, respondents, got.Results[resultsTotalKey])
	assert.Len(t, got.Results[resultsResponsesKey], respondents)
	assert.InDelta(t, 4.0, got.Results[resultsAvgWillingness], 1e-9)
}

func TestSurveyResultsRejectsLandingPage(t *testing.T) {
	t.Parallel()

	toolkit, _, _ := newToolkit(t)
	page, err := toolkit.CreateLandingPage(context.Background(), LandingRequest{TemplateType: "coming_soon", Idea: sampleIdea()})
	require.NoError(t, err)

	_, err = toolkit.SurveyResults(context.Background(), page.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateLandingPagePublishes(t *testing.T) {
	t.Parallel()

	toolkit, store, root := newToolkit(t)
	page, err := toolkit.CreateLandingPage(context.Background(), LandingRequest{
		TemplateType:  "feature_focused",
		Idea:          sampleIdea(),
		CustomContent: &domain.LandingContent{CTAText: "Join <the> waitlist"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(page.ID, "landing_"))
	assert.Equal(t, "SimpleCrm - Crm for Small Teams", page.Content.Title)
	assert.Equal(t, []string{"Easy setup", "Affordable pricing"}, page.Content.Features)
	assert.Equal(t, "Join <the> waitlist", page.Content.CTAText)
	assert.Equal(t, "#waitlist", page.Content.CTAURL)
	assert.Equal(t, domain.StatusActive, page.Status)
	assert.True(t, strings.HasPrefix(page.PublicURL, "http://localhost:8000/pages/landing/"))

	html, err := os.ReadFile(filepath.Join(root, "landing", page.ID+".html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1>SimpleCrm - Crm for Small Teams</h1>")
	assert.Contains(t, string(html), "Join &lt;the&gt; waitlist")

	stored, err := store.FindValidation(context.Background(), page.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ArtifactLandingPage, stored.Type)
	assert.Equal(t, page.PublicURL, stored.Results["public_url"])
}

func TestCreateLandingPageTemplateDefaults(t *testing.T) {
	t.Parallel()

	toolkit := NewValidationToolkit(ValidationToolkitDeps{Storage: failingStorage{}})
	page, err := toolkit.CreateLandingPage(context.Background(), LandingRequest{TemplateType: "coming_soon"})
	require.NoError(t, err)
	assert.Equal(t, "Coming Soon", page.Content.Title)
	assert.Equal(t, []string{"Early access to beta", "Exclusive pricing", "Priority support"}, page.Content.Features)
	assert.Equal(t, "Get Early Access", page.Content.CTAText)
	assert.Equal(t, domain.StatusPending, page.Status)
	assert.Empty(t, page.PublicURL)

	_, err = toolkit.CreateLandingPage(context.Background(), LandingRequest{TemplateType: "bogus"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTrackConversionAndMetrics(t *testing.T) {
	t.Parallel()

	toolkit, _, _ := newToolkit(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := toolkit.TrackConversion(ctx, "landing_x", domain.EventPageView, nil)
		require.NoError(t, err)
	}
	event, err := toolkit.TrackConversion(ctx, "landing_x", domain.EventEmailSignup, map[string]any{"email": "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", event.Data["email"])

	metrics, err := toolkit.Metrics(ctx, "landing_x")
	require.NoError(t, err)
	assert.EqualValues(t, 10, metrics.TotalVisitors)
	assert.EqualValues(t, 1, metrics.EmailSignups)
	assert.InDelta(t, 0.1, metrics.ConversionRate, 1e-9)

	empty, err := toolkit.Metrics(ctx, "landing_unknown")
	require.NoError(t, err)
	assert.Zero(t, empty.ConversionRate)

	_, err = toolkit.TrackConversion(ctx, "", domain.EventPageView, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportScore(t *testing.T) {
	t.Parallel()

	responses := []domain.SurveyResponse{{WillingnessToPay: 4}, {WillingnessToPay: 3}, {WillingnessToPay: 1}, {WillingnessToPay: 0}}

	tests := []struct {
		name      string
		responses []domain.SurveyResponse
		metrics   *domain.ReportMetrics
		want      float64
	}{
		{name: "no evidence", want: 50},
		{name: "half willing", responses: responses, want: 62.5},
		{name: "conversion capped", metrics: &domain.ReportMetrics{ConversionRate: 0.9}, want: 75},
		{name: "both", responses: responses, metrics: &domain.ReportMetrics{ConversionRate: 0.1}, want: 72.5},
		{name: "everything", responses: []domain.SurveyResponse{{WillingnessToPay: 5}}, metrics: &domain.ReportMetrics{ConversionRate: 1}, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ReportScore(tt.responses, tt.metrics), 1e-9)
		})
	}
}

func TestGenerateReport(t *testing.T) {
	t.Parallel()

	toolkit, _, _ := newToolkit(t)
	ctx := context.Background()

	report, err := toolkit.GenerateReport(ctx, ReportRequest{
		Idea:               sampleIdea(),
		SurveyResults:      []domain.SurveyResponse{{WillingnessToPay: 5}, {WillingnessToPay: 4}},
		LandingPageMetrics: &domain.ReportMetrics{ConversionRate: 0.2},
	})
	require.NoError(t, err)
	assert.InDelta(t, 95, report.ValidationScore, 1e-9)
	assert.Equal(t, []string{
		"Strong market demand - proceed with development",
		"Excellent conversion rate - scale marketing efforts",
	}, report.Recommendations)
	assert.Equal(t, "Build MVP", report.NextSteps[0])
	assert.Equal(t, "SimpleCrm - Crm for Small Teams", report.IdeaSummary["title"])

	report, err = toolkit.GenerateReport(ctx, ReportRequest{
		SurveyResults: []domain.SurveyResponse{{WillingnessToPay: 1}},
		LandingPageID: "landing_none",
	})
	require.NoError(t, err)
	assert.InDelta(t, 50, report.ValidationScore, 1e-9)
	assert.Equal(t, []string{
		"Consider adjusting pricing or value proposition",
		"Improve landing page copy and design",
	}, report.Recommendations)
	assert.Equal(t, "Pivot or refine the idea", report.NextSteps[0])
}

func TestStaticToolkitViews(t *testing.T) {
	t.Parallel()

	toolkit := NewValidationToolkit(ValidationToolkitDeps{})

	surveys := toolkit.SurveyTemplates()
	require.Len(t, surveys, 2)
	assert.Equal(t, 4, surveys["problem_validation"].QuestionsCount)

	landings := toolkit.LandingTemplates()
	require.Len(t, landings, 3)
	assert.Equal(t, "Validating feature demand", landings["feature_focused"].BestFor)

	analysis := toolkit.AnalyzeKeywords(sampleIdea())
	assert.Equal(t, []string{"contacts", "complex", "small"}, analysis.PrimaryKeywords)
	assert.Equal(t, []string{"best contacts solution", "best complex solution"}, analysis.LongTailKeywords)

	derived := toolkit.AnalyzeKeywords(domain.Idea{Title: "Invoice automation"})
	assert.Equal(t, []string{"invoice", "automation"}, derived.PrimaryKeywords)

	signals := toolkit.MarketSignals(sampleIdea())
	assert.Equal(t, "0 - 100", signals.SearchVolume.MonthlySearches)
	assert.Equal(t, "low", signals.Competition.CompetitionLevel)

	plan := toolkit.ValidationPlan(sampleIdea())
	assert.Equal(t, "Problem Validation", plan.Phase1.Title)
	assert.Equal(t, "Market Validation", plan.Phase3.Title)
}
