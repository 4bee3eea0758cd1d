package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
	"ProblemRadar/internal/scoring"
)

const (
	defaultIndustry  = "general"
	defaultTitleWord = "Problem"
	unknownIdeaID    = "unknown"
)

var frameworkCatalog = []domain.Framework{
	{
		Type:        domain.FrameworkUnbundle,
		Name:        "Unbundle a Giant",
		Description: "Take one feature from a large product and make it better",
		Examples: []string{
			"Email marketing tool from HubSpot",
			"Analytics dashboard from Google Analytics",
			"Payment processing from Stripe",
		},
	},
	{
		Type:        domain.FrameworkNiche,
		Name:        "Pick a Niche",
		Description: "Apply existing business models to specific industries",
		Examples: []string{
			"CRM for yoga studios",
			"Project management for law firms",
			"Inventory management for bakeries",
		},
	},
	{
		Type:        domain.FrameworkAPI,
		Name:        "API as a Service",
		Description: "Simplify complex processes through APIs",
		Examples: []string{
			"Identity verification API",
			"Address validation API",
			"Document processing API",
		},
	},
	{
		Type:        domain.FrameworkAutomation,
		Name:        "Automation Tool",
		Description: "Automate repetitive tasks in specific workflows",
		Examples: []string{
			"Social media scheduling",
			"Invoice generation",
			"Customer support automation",
		},
	},
	{
		Type:        domain.FrameworkGeneric,
		Name:        "Smart Solution",
		Description: "Apply modern cloud software directly to the stated problem",
		Examples: []string{
			"Smart scheduling assistant",
			"Cloud document hub",
			"Mobile field reporting",
		},
	},
}

var industries = []string{
	"real-estate",
	"healthcare",
	"education",
	"finance",
	"legal",
	"restaurant",
	"fitness",
	"e-commerce",
	"marketing",
	"consulting",
	"manufacturing",
	"retail",
	"technology",
	"non-profit",
	"government",
}

// IdeaGeneratorDeps wires the idea use case.
type IdeaGeneratorDeps struct {
	Generator ports.ContentGenerator
	Store     ports.RecordStore
	Logger    *slog.Logger
}

// IdeaGenerator turns problems into ideas using the named frameworks.
type IdeaGenerator struct {
	generator ports.ContentGenerator
	store     ports.RecordStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewIdeaGenerator constructs the idea use case.
func NewIdeaGenerator(deps IdeaGeneratorDeps) *IdeaGenerator {
	return &IdeaGenerator{
		generator: deps.Generator,
		store:     deps.Store,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// Frameworks returns the framework catalog in its fixed order.
func (g *IdeaGenerator) Frameworks() []domain.Framework {
	out := make([]domain.Framework, len(frameworkCatalog))
	copy(out, frameworkCatalog)
	return out
}

// Examples returns the sample ideas of one framework.
func (g *IdeaGenerator) Examples(framework string) ([]string, error) {
	for _, f := range frameworkCatalog {
		if string(f.Type) == framework {
			return append([]string(nil), f.Examples...), nil
		}
	}
	return nil, fmt.Errorf("%w: framework %q", domain.ErrNotFound, framework)
}

// Industries lists the industries offered for the niche framework.
func (g *IdeaGenerator) Industries() []string {
	return append([]string(nil), industries...)
}

// Generate builds one idea for problem. An enabled content generator is tried
// first; any failure falls back to the deterministic template. Only an
// unknown framework is an error.
func (g *IdeaGenerator) Generate(ctx context.Context, framework string, problem domain.Problem, industry string) (domain.Idea, error) {
	ft, ok := domain.ParseFrameworkType(strings.TrimSpace(framework))
	if !ok {
		return domain.Idea{}, fmt.Errorf("%w: unknown framework %q", domain.ErrValidation, framework)
	}

	idea := templateIdea(ft, problem, industry)
	if g.generator != nil && g.generator.Enabled() {
		answer, err := g.generator.Complete(ctx, ideaPrompt(ft, problem, industry))
		switch {
		case err != nil:
			g.warn("generate idea failed, using template", "framework", ft, "error", err)
		default:
			parsed, ok := parseIdeaAnswer(answer)
			if ok {
				idea = mergeIdea(idea, parsed)
			} else {
				g.warn("unparseable idea answer, using template", "framework", ft)
			}
		}
	}

	idea.ID = uuid.NewString()
	idea.ProblemID = problem.ID
	idea.FrameworkType = ft
	idea.Keywords = ideaKeywords(problem)
	idea.CreatedAt = g.now().UTC()

	if g.store != nil {
		if err := g.store.SaveIdea(ctx, idea); err != nil {
			g.warn("persist idea failed", "id", idea.ID, "error", err)
		}
	}
	return idea, nil
}

// BatchResult is the outcome of BatchGenerate.
type BatchResult struct {
	Ideas  []domain.Idea `json:"ideas"`
	Failed int           `json:"failed"`
}

// BatchGenerate generates one idea per problem. Problems without a title are
// counted as failures and skipped.
func (g *IdeaGenerator) BatchGenerate(ctx context.Context, framework string, problems []domain.Problem, industry string) (BatchResult, error) {
	if _, ok := domain.ParseFrameworkType(strings.TrimSpace(framework)); !ok {
		return BatchResult{}, fmt.Errorf("%w: unknown framework %q", domain.ErrValidation, framework)
	}

	res := BatchResult{Ideas: make([]domain.Idea, 0, len(problems))}
	for i, p := range problems {
		if err := ctx.Err(); err != nil {
			res.Failed += len(problems) - i
			break
		}
		if strings.TrimSpace(p.Title) == "" {
			res.Failed++
			continue
		}
		idea, err := g.Generate(ctx, framework, p, industry)
		if err != nil {
			res.Failed++
			g.warn("batch item failed", "problem", p.ID, "error", err)
			continue
		}
		res.Ideas = append(res.Ideas, idea)
	}
	return res, nil
}

// AnalyzeCompetition classifies the idea from words in its title.
func (g *IdeaGenerator) AnalyzeCompetition(idea domain.Idea) domain.CompetitionAnalysis {
	title := strings.ToLower(idea.Title)
	level := domain.CompetitionMedium
	switch {
	case containsWord(title, "simple", "easy", "affordable"):
		level = domain.CompetitionLow
	case containsWord(title, "enterprise", "advanced", "complex"):
		level = domain.CompetitionHigh
	}

	return domain.CompetitionAnalysis{
		IdeaID:           ideaRef(idea),
		CompetitionLevel: level,
		MarketSaturation: "Medium",
		KeyCompetitors: []string{
			"Established players in the space",
			"Emerging startups",
			"Open source alternatives",
		},
		CompetitiveAdvantages: []string{
			"Simpler user experience",
			"Lower pricing",
			"Better integration",
		},
		MarketGaps: []string{
			"Complex existing solutions",
			"High pricing",
			"Poor user experience",
		},
		Recommendations: []string{
			"Focus on differentiation",
			"Target underserved segments",
			"Build strong user experience",
		},
	}
}

// EstimateMarket sizes the idea from words in its title.
func (g *IdeaGenerator) EstimateMarket(idea domain.Idea) domain.MarketEstimate {
	title := strings.ToLower(idea.Title)
	tam, som := "Medium ($50M - $100M TAM)", "$5M - $20M"
	switch {
	case containsWord(title, "enterprise", "large", "global"):
		tam, som = "Large ($100M+ TAM)", "$10M - $50M"
	case containsWord(title, "small", "niche", "specific"):
		tam, som = "Small ($10M - $50M TAM)", "$1M - $10M"
	}

	return domain.MarketEstimate{
		IdeaID:                 ideaRef(idea),
		TotalAddressableMarket: tam,
		ObtainableMarket:       som,
		TargetCustomerSegments: []string{"Small businesses", "Startups", "Freelancers"},
		MarketGrowthRate:       "15-20% annually",
		MarketMaturity:         "Growing",
		GeographicFocus:        "Global",
		PricingPotential:       "$10-50/month per user",
		CustomerLifetimeValue:  "$500-2000",
	}
}

// ValidateIdea combines competition, market size, stack complexity and
// monetization into a score capped at 100.
func (g *IdeaGenerator) ValidateIdea(idea domain.Idea) domain.IdeaValidation {
	competition := g.AnalyzeCompetition(idea)
	market := g.EstimateMarket(idea)

	score := saturationScore(competition.MarketSaturation) +
		marketScore(market.ObtainableMarket) +
		stackScore(len(idea.TechStack)) +
		monetizationScore(idea.MonetizationModel)
	if score > 100 {
		score = 100
	}

	return domain.IdeaValidation{
		Idea:                idea,
		CompetitionAnalysis: competition,
		MarketSize:          market,
		ValidationScore:     score,
		Recommendations:     validationRecommendations(score),
	}
}

func saturationScore(saturation string) int {
	switch saturation {
	case "Low":
		return 30
	case "Medium":
		return 20
	}
	return 10
}

func marketScore(obtainable string) int {
	switch {
	case strings.Contains(obtainable, "B"):
		return 30
	case strings.Contains(obtainable, "M") && strings.Contains(obtainable, "50M"):
		return 25
	case strings.Contains(obtainable, "M"):
		return 20
	}
	return 10
}

func stackScore(size int) int {
	switch {
	case size <= 3:
		return 20
	case size <= 5:
		return 15
	}
	return 10
}

func monetizationScore(model string) int {
	model = strings.ToLower(model)
	switch {
	case strings.Contains(model, "subscription"):
		return 20
	case strings.Contains(model, "usage"):
		return 15
	}
	return 10
}

func validationRecommendations(score int) []string {
	switch {
	case score >= 80:
		return []string{
			"Strong idea with high potential",
			"Consider building MVP",
			"Start market research and user interviews",
		}
	case score >= 60:
		return []string{
			"Good idea with potential",
			"Refine value proposition",
			"Conduct more market research",
		}
	case score >= 40:
		return []string{
			"Moderate potential",
			"Consider pivoting or refining",
			"Focus on unique differentiation",
		}
	}
	return []string{
		"Low validation score",
		"Consider different approach or market",
		"Conduct more research before proceeding",
	}
}

// templateIdea fills the framework template from the first word of the
// problem title.
func templateIdea(ft domain.FrameworkType, problem domain.Problem, industry string) domain.Idea {
	raw := firstWord(problem.Title)
	word := titleCase(raw)

	switch ft {
	case domain.FrameworkUnbundle:
		return domain.Idea{
			Title:             fmt.Sprintf("Simple%s - %s for Small Teams", word, word),
			Description:       fmt.Sprintf("A simplified %s platform designed specifically for small businesses. Focuses on ease of use and affordability while providing essential features.", strings.ToLower(raw)),
			TargetAudience:    "Small businesses and startups",
			MonetizationModel: "Subscription-based with tiered pricing",
			TechStack:         []string{"React", "Node.js", "PostgreSQL", "AWS"},
			MarketSize:        "Medium (niche but growing)",
			CompetitionLevel:  domain.CompetitionMedium,
			KeyFeatures: []string{
				"Easy setup and onboarding",
				"Essential features only",
				"Affordable pricing",
				"Great customer support",
			},
		}
	case domain.FrameworkNiche:
		if strings.TrimSpace(industry) == "" {
			industry = defaultIndustry
		}
		ind := titleCase(industry)
		return domain.Idea{
			Title:             fmt.Sprintf("%sFlow - %s for %s", ind, word, ind),
			Description:       fmt.Sprintf("%s tool built specifically for %s businesses with industry-specific features and workflows.", word, industry),
			TargetAudience:    fmt.Sprintf("%s businesses and professionals", ind),
			MonetizationModel: "Monthly subscription per user",
			TechStack:         []string{"React", "Python FastAPI", "PostgreSQL", "Stripe"},
			MarketSize:        "Small but loyal",
			CompetitionLevel:  domain.CompetitionLow,
			KeyFeatures: []string{
				fmt.Sprintf("%s-specific features", ind),
				"Industry templates",
				"Compliance features",
				"Industry integrations",
			},
		}
	case domain.FrameworkAPI:
		return domain.Idea{
			Title:             fmt.Sprintf("%sAPI - %s as a Service", word, word),
			Description:       fmt.Sprintf("Simple API that provides %s functionality. Easy to integrate and use for developers.", raw),
			TargetAudience:    "Developers and technical teams",
			MonetizationModel: "Usage-based pricing",
			TechStack:         []string{"Python FastAPI", "Redis", "PostgreSQL", "Docker"},
			MarketSize:        "Medium (developer tools)",
			CompetitionLevel:  domain.CompetitionMedium,
			KeyFeatures: []string{
				"RESTful API",
				"Comprehensive documentation",
				"Multiple SDKs",
				"Usage analytics",
			},
		}
	case domain.FrameworkAutomation:
		return domain.Idea{
			Title:             fmt.Sprintf("Auto%s - %s Automation", word, word),
			Description:       fmt.Sprintf("Automate %s tasks and workflows. Save time and reduce manual work.", raw),
			TargetAudience:    "Businesses and professionals",
			MonetizationModel: "Subscription-based SaaS",
			TechStack:         []string{"React", "Python", "PostgreSQL", "Zapier API"},
			MarketSize:        "Large and growing",
			CompetitionLevel:  domain.CompetitionHigh,
			KeyFeatures: []string{
				"Workflow automation",
				"Integration capabilities",
				"Scheduling and triggers",
				"Analytics and reporting",
			},
		}
	}

	subject := strings.ToLower(strings.TrimSpace(problem.Title))
	if subject == "" {
		subject = strings.ToLower(defaultTitleWord)
	}
	return domain.Idea{
		Title:             fmt.Sprintf("Smart%s - %s Solution", word, word),
		Description:       fmt.Sprintf("Intelligent solution for %s. Uses modern technology to solve the problem effectively.", subject),
		TargetAudience:    "General business users",
		MonetizationModel: "Subscription-based",
		TechStack:         []string{"React", "Python FastAPI", "PostgreSQL", "AWS"},
		MarketSize:        "To be determined",
		CompetitionLevel:  domain.CompetitionMedium,
		KeyFeatures: []string{
			"Modern interface",
			"Cloud-based",
			"Mobile responsive",
			"24/7 support",
		},
	}
}

func ideaPrompt(ft domain.FrameworkType, problem domain.Problem, industry string) string {
	if strings.TrimSpace(industry) == "" {
		industry = defaultIndustry
	}
	name := string(ft)
	for _, f := range frameworkCatalog {
		if f.Type == ft {
			name = f.Name
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Problem: %s\n", problem.Title)
	fmt.Fprintf(&b, "Description: %s\n", problem.Description)
	fmt.Fprintf(&b, "Industry: %s\n", industry)
	fmt.Fprintf(&b, "Framework: %s\n\n", name)
	fmt.Fprintf(&b, "Generate a SaaS idea that solves this problem using the %s framework.\n\n", ft)
	b.WriteString("Return a JSON object with: title, description, target_audience, monetization_model, ")
	b.WriteString("tech_stack (list), market_size, competition_level (low/medium/high), key_features (list).")
	return b.String()
}

// mergeIdea overlays every non-empty parsed field onto the template.
func mergeIdea(base, parsed domain.Idea) domain.Idea {
	if parsed.Title != "" {
		base.Title = parsed.Title
	}
	if parsed.Description != "" {
		base.Description = parsed.Description
	}
	if parsed.TargetAudience != "" {
		base.TargetAudience = parsed.TargetAudience
	}
	if parsed.MonetizationModel != "" {
		base.MonetizationModel = parsed.MonetizationModel
	}
	if len(parsed.TechStack) > 0 {
		base.TechStack = parsed.TechStack
	}
	if parsed.MarketSize != "" {
		base.MarketSize = parsed.MarketSize
	}
	switch level := strings.ToLower(parsed.CompetitionLevel); level {
	case domain.CompetitionLow, domain.CompetitionMedium, domain.CompetitionHigh:
		base.CompetitionLevel = level
	}
	if len(parsed.KeyFeatures) > 0 {
		base.KeyFeatures = parsed.KeyFeatures
	}
	return base
}

func ideaKeywords(problem domain.Problem) []string {
	if len(problem.Keywords) > 0 {
		return scoring.NormalizeKeywords(problem.Keywords)
	}
	return scoring.ExtractKeywords(problem.Title + " " + problem.Description)
}

func ideaRef(idea domain.Idea) string {
	if idea.ID == "" {
		return unknownIdeaID
	}
	return idea.ID
}

func containsWord(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func firstWord(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return defaultTitleWord
	}
	return fields[0]
}

// titleCase upper-cases the first letter of every letter run and lower-cases
// the rest, so "real-estate" becomes "Real-Estate".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && !prevLetter:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

func (g *IdeaGenerator) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
