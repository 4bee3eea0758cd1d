package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
	"ProblemRadar/internal/scoring"
)

const (
	reportBaseScore       = 50.0
	reportSurveyWeight    = 25.0
	reportConversionCap   = 25.0
	willingnessThreshold  = 3.0
	strongWillingness     = 4.0
	lowConversionRate     = 0.05
	excellentConversion   = 0.15
	landingContentType    = "text/html; charset=utf-8"
	defaultCTAText        = "Get Early Access"
	defaultCTAURL         = "#waitlist"
	resultsResponsesKey   = domain.ResultResponses
	resultsTotalKey       = domain.ResultTotalResponses
	resultsAvgWillingness = domain.ResultAvgWillingness
)

type surveyTemplate struct {
	title         string
	description   string
	estimatedTime string
	questions     []domain.SurveyQuestion
}

var surveyTemplates = map[string]surveyTemplate{
	"problem_validation": {
		title:         "Problem Validation Survey",
		description:   "Validate if the problem you're solving is real and painful",
		estimatedTime: "2-3 minutes",
		questions: []domain.SurveyQuestion{
			{ID: "problem_frequency", Type: "scale", Question: "How often do you face this problem?", Options: []string{"Never", "Rarely", "Sometimes", "Often", "Daily"}},
			{ID: "problem_impact", Type: "scale", Question: "How much does this problem impact your work?", Options: []string{"No impact", "Minor", "Moderate", "Significant", "Critical"}},
			{ID: "current_solution", Type: "text", Question: "How do you currently solve this problem?"},
			{ID: "willingness_to_pay", Type: "scale", Question: "Would you pay for a solution to this problem?", Options: []string{"No", "Maybe", "Yes", "Definitely", "Already paying"}},
		},
	},
	"solution_validation": {
		title:         "Solution Validation Survey",
		description:   "Validate if your solution addresses the problem effectively",
		estimatedTime: "3-4 minutes",
		questions: []domain.SurveyQuestion{
			{ID: "solution_interest", Type: "scale", Question: "How interested are you in this solution?", Options: []string{"Not interested", "Somewhat", "Interested", "Very interested", "Must have"}},
			{ID: "feature_priority", Type: "multi_select", Question: "Which features are most important to you?", Options: []string{"Easy to use", "Affordable", "Fast", "Integrations", "Support"}},
			{ID: "pricing_expectation", Type: "text", Question: "What would you expect to pay for this solution?"},
			{ID: "timeline", Type: "scale", Question: "When would you need this solution?", Options: []string{"No rush", "Within 6 months", "Within 3 months", "Within 1 month", "Immediately"}},
		},
	},
}

type landingTemplate struct {
	title       string
	description string
	bestFor     string
	summary     string
	features    []string
}

var landingTemplates = map[string]landingTemplate{
	"coming_soon": {
		title:       "Coming Soon",
		description: "We're building something amazing. Be the first to know when we launch.",
		summary:     "Simple coming soon page to collect email signups",
		bestFor:     "Early validation and building waitlist",
		features:    []string{"Early access to beta", "Exclusive pricing", "Priority support"},
	},
	"problem_solution": {
		title:       "Problem-Solution",
		description: "We understand your pain. Here's how we're solving it.",
		summary:     "Focus on the problem and how you solve it",
		bestFor:     "Validating problem-solution fit",
		features:    []string{"Clear problem statement", "Solution overview", "Benefits and outcomes"},
	},
	"feature_focused": {
		title:       "Feature-Focused",
		description: "Discover the key features that will transform your workflow.",
		summary:     "Highlight key features and benefits",
		bestFor:     "Validating feature demand",
		features:    []string{"Feature highlights", "Use cases", "Integration possibilities"},
	},
}

var landingPage = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
{{with .TargetAudience}}<p class="audience">Built for {{.}}</p>
{{end}}<ul>
{{range .Features}}<li>{{.}}</li>
{{end}}</ul>
{{with .MonetizationModel}}<p class="pricing">{{.}}</p>
{{end}}<a class="cta" id="waitlist" href="{{.CTAURL}}">{{.CTAText}}</a>
</main>
</body>
</html>
`))

// SurveyTemplateInfo is the catalog view of a survey template.
type SurveyTemplateInfo struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	QuestionsCount int    `json:"questions_count"`
	EstimatedTime  string `json:"estimated_time"`
}

// LandingTemplateInfo is the catalog view of a landing template.
type LandingTemplateInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BestFor     string `json:"best_for"`
}

// SurveyRequest creates a survey for an idea.
type SurveyRequest struct {
	SurveyType      string                  `json:"survey_type"`
	Idea            domain.Idea             `json:"idea"`
	CustomQuestions []domain.SurveyQuestion `json:"custom_questions"`
}

// LandingRequest creates a landing page for an idea.
type LandingRequest struct {
	TemplateType  string                 `json:"template_type"`
	Idea          domain.Idea            `json:"idea"`
	CustomContent *domain.LandingContent `json:"custom_content"`
}

// ReportRequest carries the evidence gathered for an idea. When
// LandingPageMetrics is nil and LandingPageID is set, tracked counters are used.
type ReportRequest struct {
	Idea               domain.Idea             `json:"idea"`
	SurveyResults      []domain.SurveyResponse `json:"survey_results"`
	LandingPageMetrics *domain.ReportMetrics   `json:"landing_page_metrics"`
	LandingPageID      string                  `json:"landing_page_id"`
}

// ValidationToolkitDeps wires the validation use case.
type ValidationToolkitDeps struct {
	Store   ports.RecordStore
	Storage ports.ObjectStorage
	Tracker ports.ConversionTracker
	Logger  *slog.Logger
}

// ValidationToolkit creates surveys and landing pages, tracks conversions and
// scores the collected evidence.
type ValidationToolkit struct {
	store   ports.RecordStore
	storage ports.ObjectStorage
	tracker ports.ConversionTracker
	logger  *slog.Logger
	now     func() time.Time
}

// NewValidationToolkit constructs the validation use case.
func NewValidationToolkit(deps ValidationToolkitDeps) *ValidationToolkit {
	return &ValidationToolkit{
		store:   deps.Store,
		storage: deps.Storage,
		tracker: deps.Tracker,
		logger:  deps.Logger,
		now:     time.Now,
	}
}

// SurveyTemplates returns the survey catalog keyed by type.
func (v *ValidationToolkit) SurveyTemplates() map[string]SurveyTemplateInfo {
	out := make(map[string]SurveyTemplateInfo, len(surveyTemplates))
	for name, t := range surveyTemplates {
		out[name] = SurveyTemplateInfo{
			Name:           t.title,
			Description:    t.description,
			QuestionsCount: len(t.questions),
			EstimatedTime:  t.estimatedTime,
		}
	}
	return out
}

// LandingTemplates returns the landing page catalog keyed by type.
func (v *ValidationToolkit) LandingTemplates() map[string]LandingTemplateInfo {
	out := make(map[string]LandingTemplateInfo, len(landingTemplates))
	for name, t := range landingTemplates {
		out[name] = LandingTemplateInfo{
			Name:        t.title,
			Description: t.summary,
			BestFor:     t.bestFor,
		}
	}
	return out
}

// CreateSurvey instantiates a survey template and records it as an active
// validation artifact.
func (v *ValidationToolkit) CreateSurvey(ctx context.Context, req SurveyRequest) (domain.Survey, error) {
	tmpl, ok := surveyTemplates[req.SurveyType]
	if !ok {
		return domain.Survey{}, fmt.Errorf("%w: unknown survey type %q", domain.ErrValidation, req.SurveyType)
	}
	for _, q := range req.CustomQuestions {
		if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Question) == "" {
			return domain.Survey{}, fmt.Errorf("%w: custom questions need id and question", domain.ErrValidation)
		}
	}

	questions := make([]domain.SurveyQuestion, 0, len(tmpl.questions)+len(req.CustomQuestions))
	questions = append(questions, tmpl.questions...)
	questions = append(questions, req.CustomQuestions...)

	now := v.now().UTC()
	survey := domain.Survey{
		ID:              "survey_" + uuid.NewString(),
		Type:            req.SurveyType,
		Title:           tmpl.title,
		IdeaID:          req.Idea.ID,
		IdeaTitle:       req.Idea.Title,
		IdeaDescription: req.Idea.Description,
		Questions:       questions,
		Status:          domain.StatusActive,
		CreatedAt:       now,
	}

	err := v.save(ctx, domain.Validation{
		ID:     survey.ID,
		IdeaID: survey.IdeaID,
		Type:   domain.ArtifactSurvey,
		Status: survey.Status,
		Results: map[string]any{
			"survey_type":       survey.Type,
			"title":             survey.Title,
			"questions_count":   len(questions),
			resultsTotalKey:     0,
			resultsResponsesKey: []any{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.Survey{}, err
	}
	return survey, nil
}

// SubmitSurveyResponse appends one response to a survey's results.
func (v *ValidationToolkit) SubmitSurveyResponse(ctx context.Context, surveyID string, resp domain.SurveyResponse) (domain.Validation, error) {
	if resp.WillingnessToPay < 0 || resp.WillingnessToPay > 5 {
		return domain.Validation{}, fmt.Errorf("%w: willingness_to_pay must be within [0, 5]", domain.ErrValidation)
	}
	if v.store == nil {
		return domain.Validation{}, fmt.Errorf("%w: survey %s", domain.ErrNotFound, surveyID)
	}
	return v.store.AppendSurveyResponse(ctx, surveyID, resp)
}

// SurveyResults returns the stored survey artifact.
func (v *ValidationToolkit) SurveyResults(ctx context.Context, surveyID string) (domain.Validation, error) {
	if v.store == nil {
		return domain.Validation{}, fmt.Errorf("%w: survey %s", domain.ErrNotFound, surveyID)
	}
	val, err := v.store.FindValidation(ctx, surveyID)
	if err != nil {
		return domain.Validation{}, err
	}
	if val.Type != domain.ArtifactSurvey {
		return domain.Validation{}, fmt.Errorf("%w: survey %s", domain.ErrNotFound, surveyID)
	}
	return val, nil
}

// CreateLandingPage fills a landing template from the idea, publishes the
// rendered page when object storage is configured and records the artifact.
func (v *ValidationToolkit) CreateLandingPage(ctx context.Context, req LandingRequest) (domain.LandingPage, error) {
	tmpl, ok := landingTemplates[req.TemplateType]
	if !ok {
		return domain.LandingPage{}, fmt.Errorf("%w: unknown template type %q", domain.ErrValidation, req.TemplateType)
	}

	content := domain.LandingContent{
		Title:             firstNonEmpty(req.Idea.Title, tmpl.title),
		Description:       firstNonEmpty(req.Idea.Description, tmpl.description),
		Features:          req.Idea.KeyFeatures,
		TargetAudience:    req.Idea.TargetAudience,
		MonetizationModel: req.Idea.MonetizationModel,
		CTAText:           defaultCTAText,
		CTAURL:            defaultCTAURL,
	}
	if len(content.Features) == 0 {
		content.Features = append([]string(nil), tmpl.features...)
	}
	if req.CustomContent != nil {
		content = overlayContent(content, *req.CustomContent)
	}

	now := v.now().UTC()
	page := domain.LandingPage{
		ID:           "landing_" + uuid.NewString(),
		TemplateType: req.TemplateType,
		IdeaID:       req.Idea.ID,
		Content:      content,
		Status:       domain.StatusPending,
		CreatedAt:    now,
	}

	if v.storage != nil {
		url, err := v.publish(ctx, page)
		if err != nil {
			v.warn("publish landing page failed", "id", page.ID, "error", err)
		} else {
			page.PublicURL = url
			page.Status = domain.StatusActive
		}
	}

	err := v.save(ctx, domain.Validation{
		ID:     page.ID,
		IdeaID: page.IdeaID,
		Type:   domain.ArtifactLandingPage,
		Status: page.Status,
		Results: map[string]any{
			"template_type": page.TemplateType,
			"title":         content.Title,
			"public_url":    page.PublicURL,
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.LandingPage{}, err
	}
	return page, nil
}

func (v *ValidationToolkit) publish(ctx context.Context, page domain.LandingPage) (string, error) {
	var buf bytes.Buffer
	if err := landingPage.Execute(&buf, page.Content); err != nil {
		return "", fmt.Errorf("render landing page: %w", err)
	}
	return v.storage.Put(ctx, "landing/"+page.ID+".html", buf.Bytes(), landingContentType)
}

func overlayContent(base, custom domain.LandingContent) domain.LandingContent {
	base.Title = firstNonEmpty(custom.Title, base.Title)
	base.Description = firstNonEmpty(custom.Description, base.Description)
	base.TargetAudience = firstNonEmpty(custom.TargetAudience, base.TargetAudience)
	base.MonetizationModel = firstNonEmpty(custom.MonetizationModel, base.MonetizationModel)
	base.CTAText = firstNonEmpty(custom.CTAText, base.CTAText)
	base.CTAURL = firstNonEmpty(custom.CTAURL, base.CTAURL)
	if len(custom.Features) > 0 {
		base.Features = custom.Features
	}
	return base
}

// TrackConversion records one landing-page event.
func (v *ValidationToolkit) TrackConversion(ctx context.Context, landingPageID, eventType string, data map[string]any) (domain.ConversionEvent, error) {
	landingPageID = strings.TrimSpace(landingPageID)
	eventType = strings.TrimSpace(eventType)
	if landingPageID == "" || eventType == "" {
		return domain.ConversionEvent{}, fmt.Errorf("%w: landing_page_id and event_type are required", domain.ErrValidation)
	}
	if data == nil {
		data = map[string]any{}
	}

	event := domain.ConversionEvent{
		LandingPageID: landingPageID,
		EventType:     eventType,
		Timestamp:     v.now().UTC(),
		Data:          data,
	}
	if v.tracker == nil {
		return event, nil
	}
	if err := v.tracker.Track(ctx, event); err != nil {
		return domain.ConversionEvent{}, fmt.Errorf("track conversion: %w", err)
	}
	return event, nil
}

// Metrics summarizes the tracked counters of a landing page.
func (v *ValidationToolkit) Metrics(ctx context.Context, landingPageID string) (domain.LandingMetrics, error) {
	metrics := domain.LandingMetrics{LandingPageID: landingPageID, Events: map[string]int64{}}
	if strings.TrimSpace(landingPageID) == "" {
		return metrics, fmt.Errorf("%w: landing page id is required", domain.ErrValidation)
	}
	if v.tracker == nil {
		return metrics, nil
	}

	counts, err := v.tracker.Counts(ctx, landingPageID)
	if err != nil {
		return metrics, fmt.Errorf("load conversion counts: %w", err)
	}
	for k, n := range counts {
		metrics.Events[k] = n
	}
	metrics.TotalVisitors = counts[domain.EventPageView]
	metrics.EmailSignups = counts[domain.EventEmailSignup]
	if metrics.TotalVisitors > 0 {
		metrics.ConversionRate = float64(metrics.EmailSignups) / float64(metrics.TotalVisitors)
	}
	return metrics, nil
}

// GenerateReport scores the evidence for an idea.
func (v *ValidationToolkit) GenerateReport(ctx context.Context, req ReportRequest) (domain.ValidationReport, error) {
	metrics := req.LandingPageMetrics
	if metrics == nil && req.LandingPageID != "" {
		tracked, err := v.Metrics(ctx, req.LandingPageID)
		if err != nil {
			return domain.ValidationReport{}, err
		}
		metrics = &domain.ReportMetrics{ConversionRate: tracked.ConversionRate}
	}

	score := ReportScore(req.SurveyResults, metrics)
	return domain.ValidationReport{
		IdeaSummary: map[string]string{
			"title":              req.Idea.Title,
			"description":        req.Idea.Description,
			"target_audience":    req.Idea.TargetAudience,
			"monetization_model": req.Idea.MonetizationModel,
		},
		ValidationScore: score,
		Recommendations: reportRecommendations(req.SurveyResults, metrics),
		NextSteps:       reportNextSteps(score),
		GeneratedAt:     v.now().UTC(),
	}, nil
}

// ReportScore starts at 50, adds up to 25 for the share of respondents with
// willingness to pay of at least 3 and up to 25 for the conversion rate, and
// clamps to [0, 100].
func ReportScore(responses []domain.SurveyResponse, metrics *domain.ReportMetrics) float64 {
	score := reportBaseScore
	if len(responses) > 0 {
		positive := 0
		for _, r := range responses {
			if r.WillingnessToPay >= willingnessThreshold {
				positive++
			}
		}
		score += float64(positive) / float64(len(responses)) * reportSurveyWeight
	}
	if metrics != nil {
		score += min(metrics.ConversionRate*100, reportConversionCap)
	}
	return max(0, min(100, score))
}

func reportRecommendations(responses []domain.SurveyResponse, metrics *domain.ReportMetrics) []string {
	recs := []string{}
	if len(responses) > 0 {
		total := 0.0
		for _, r := range responses {
			total += r.WillingnessToPay
		}
		avg := total / float64(len(responses))
		if avg < willingnessThreshold {
			recs = append(recs, "Consider adjusting pricing or value proposition")
		}
		if avg >= strongWillingness {
			recs = append(recs, "Strong market demand - proceed with development")
		}
	}
	if metrics != nil {
		if metrics.ConversionRate < lowConversionRate {
			recs = append(recs, "Improve landing page copy and design")
		}
		if metrics.ConversionRate > excellentConversion {
			recs = append(recs, "Excellent conversion rate - scale marketing efforts")
		}
	}
	return recs
}

func reportNextSteps(score float64) []string {
	switch {
	case score >= 80:
		return []string{"Build MVP", "Set up development team", "Create detailed business plan"}
	case score >= 60:
		return []string{"Iterate on idea based on feedback", "Conduct more user interviews", "Refine value proposition"}
	}
	return []string{"Pivot or refine the idea", "Conduct more market research", "Consider different target audience"}
}

// SearchVolume is the search-demand part of MarketSignals.
type SearchVolume struct {
	MonthlySearches string `json:"monthly_searches"`
	Trend           string `json:"trend"`
	Seasonality     string `json:"seasonality"`
}

// CompetitionSignal is the competitor part of MarketSignals.
type CompetitionSignal struct {
	CompetitorCount  string   `json:"competitor_count"`
	CompetitionLevel string   `json:"competition_level"`
	TopCompetitors   []string `json:"top_competitors"`
}

// AdvertisingSignal is the paid-acquisition part of MarketSignals.
type AdvertisingSignal struct {
	CPCRange        string `json:"cpc_range"`
	AdCompetition   string `json:"ad_competition"`
	SuggestedBudget string `json:"suggested_budget"`
}

// TrendSignal is the trend part of MarketSignals.
type TrendSignal struct {
	Score         int      `json:"google_trends_score"`
	Direction     string   `json:"trend_direction"`
	SeasonalPeaks []string `json:"seasonal_peaks"`
}

// MarketSignals is a baseline market view for an idea.
type MarketSignals struct {
	Keywords     []string          `json:"keywords"`
	SearchVolume SearchVolume      `json:"search_volume"`
	Competition  CompetitionSignal `json:"competition"`
	Advertising  AdvertisingSignal `json:"advertising"`
	Trends       TrendSignal       `json:"trends"`
}

// MarketSignals returns the baseline signals; no external research service
// is consulted.
func (v *ValidationToolkit) MarketSignals(idea domain.Idea) MarketSignals {
	return MarketSignals{
		Keywords: ideaTerms(idea),
		SearchVolume: SearchVolume{
			MonthlySearches: "0 - 100",
			Trend:           "stable",
			Seasonality:     "stable",
		},
		Competition: CompetitionSignal{
			CompetitorCount:  "0-5",
			CompetitionLevel: domain.CompetitionLow,
			TopCompetitors:   []string{},
		},
		Advertising: AdvertisingSignal{
			CPCRange:        "$0.50 - $1.50",
			AdCompetition:   "low",
			SuggestedBudget: "$100 - $500/month",
		},
		Trends: TrendSignal{
			Direction:     "stable",
			SeasonalPeaks: []string{},
		},
	}
}

// KeywordAnalysis groups SEO keywords for an idea.
type KeywordAnalysis struct {
	PrimaryKeywords    []string            `json:"primary_keywords"`
	LongTailKeywords   []string            `json:"long_tail_keywords"`
	CompetitorKeywords []string            `json:"competitor_keywords"`
	SearchIntent       map[string][]string `json:"search_intent"`
}

// AnalyzeKeywords derives keyword groups from the idea keywords, or from its
// title and description when it has none.
func (v *ValidationToolkit) AnalyzeKeywords(idea domain.Idea) KeywordAnalysis {
	terms := ideaTerms(idea)
	primary := terms[:min(3, len(terms))]
	longTail := make([]string, 0, 2)
	for _, kw := range terms[:min(2, len(terms))] {
		longTail = append(longTail, fmt.Sprintf("best %s solution", kw))
	}
	return KeywordAnalysis{
		PrimaryKeywords:    append([]string{}, primary...),
		LongTailKeywords:   longTail,
		CompetitorKeywords: []string{"alternative to", "vs competitor", "reviews"},
		SearchIntent: map[string][]string{
			"informational": {"how to", "what is", "guide"},
			"commercial":    {"best", "top", "review"},
			"transactional": {"buy", "pricing", "demo"},
		},
	}
}

func ideaTerms(idea domain.Idea) []string {
	if len(idea.Keywords) > 0 {
		return scoring.NormalizeKeywords(idea.Keywords)
	}
	return scoring.ExtractKeywords(idea.Title + " " + idea.Description)
}

// PlanPhase is one step of a ValidationPlan.
type PlanPhase struct {
	Title          string   `json:"title"`
	Duration       string   `json:"duration"`
	Activities     []string `json:"activities"`
	SuccessMetrics []string `json:"success_metrics"`
}

// ValidationPlan is the three-phase validation roadmap.
type ValidationPlan struct {
	Phase1 PlanPhase `json:"phase_1"`
	Phase2 PlanPhase `json:"phase_2"`
	Phase3 PlanPhase `json:"phase_3"`
}

// ValidationPlan returns the standard roadmap. The idea is accepted for
// symmetry with the other toolkit calls.
func (v *ValidationToolkit) ValidationPlan(domain.Idea) ValidationPlan {
	return ValidationPlan{
		Phase1: PlanPhase{
			Title:    "Problem Validation",
			Duration: "1-2 weeks",
			Activities: []string{
				"Create problem validation survey",
				"Share in relevant communities",
				"Interview potential users",
				"Analyze survey responses",
			},
			SuccessMetrics: []string{
				"50+ survey responses",
				"70%+ report problem as significant",
				"60%+ willing to pay for solution",
			},
		},
		Phase2: PlanPhase{
			Title:    "Solution Validation",
			Duration: "2-3 weeks",
			Activities: []string{
				"Create landing page",
				"Build MVP/prototype",
				"Get user feedback",
				"Iterate based on feedback",
			},
			SuccessMetrics: []string{
				"100+ landing page visitors",
				"20+ email signups",
				"5+ user interviews",
			},
		},
		Phase3: PlanPhase{
			Title:    "Market Validation",
			Duration: "3-4 weeks",
			Activities: []string{
				"Analyze market signals",
				"Research competitors",
				"Estimate market size",
				"Define pricing strategy",
			},
			SuccessMetrics: []string{
				"Clear market opportunity",
				"Competitive advantage identified",
				"Pricing strategy validated",
			},
		},
	}
}

func (v *ValidationToolkit) save(ctx context.Context, val domain.Validation) error {
	if v.store == nil {
		return nil
	}
	if err := v.store.SaveValidation(ctx, val); err != nil {
		return fmt.Errorf("save %s %s: %w", val.Type, val.ID, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func (v *ValidationToolkit) warn(msg string, args ...any) {
	if v.logger != nil {
		v.logger.Warn(msg, args...)
	}
}
