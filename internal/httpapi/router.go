// Package httpapi exposes the use cases over HTTP with gin.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ProblemRadar/internal/ports"
	"ProblemRadar/internal/usecase"
)

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

// RouterDeps wires the use cases into the HTTP surface. A nil Verifier leaves
// the validation routes open.
type RouterDeps struct {
	Problems       *usecase.ProblemService
	Ideas          *usecase.IdeaGenerator
	Validation     *usecase.ValidationToolkit
	Verifier       ports.TokenVerifier
	PagesDir       string
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

type handlers struct {
	problems   *usecase.ProblemService
	ideas      *usecase.IdeaGenerator
	validation *usecase.ValidationToolkit
	logger     *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(recovery(deps.Logger), requestLogger(deps.Logger), cors(deps.CORSOrigins), requestTimeout(deps.RequestTimeout))

	h := &handlers{
		problems:   deps.Problems,
		ideas:      deps.Ideas,
		validation: deps.Validation,
		logger:     deps.Logger,
	}

	r.GET("/health", h.health)
	if deps.PagesDir != "" {
		r.Static("/pages", deps.PagesDir)
	}

	v1 := r.Group(APIPrefix)

	problems := v1.Group("/problems")
	{
		problems.GET("", h.listProblems)
		problems.GET("/categories", h.problemCategories)
		problems.GET("/sources", h.problemSources)
		problems.GET("/trending", h.trendingProblems)
		problems.POST("/search", h.searchProblems)
		problems.GET("/:id", h.getProblem)
		problems.GET("/:id/similar", h.similarProblems)
	}

	ideas := v1.Group("/ideas")
	{
		ideas.GET("/frameworks", h.frameworks)
		ideas.GET("/examples/:framework", h.frameworkExamples)
		ideas.GET("/industries", h.industries)
		ideas.POST("/generate", h.generateIdea)
		ideas.POST("/batch-generate", h.batchGenerate)
		ideas.POST("/analyze-competition", h.analyzeCompetition)
		ideas.POST("/estimate-market-size", h.estimateMarket)
		ideas.POST("/validate-idea", h.validateIdea)
	}

	validation := v1.Group("/validation")
	if deps.Verifier != nil {
		validation.Use(bearerAuth(deps.Verifier, deps.Logger))
	}
	{
		validation.POST("/surveys/create", h.createSurvey)
		validation.GET("/surveys/templates", h.surveyTemplates)
		validation.POST("/surveys/:id/responses", h.submitSurveyResponse)
		validation.GET("/survey-results/:id", h.surveyResults)
		validation.POST("/landing-pages/create", h.createLandingPage)
		validation.GET("/landing-pages/templates", h.landingTemplates)
		validation.POST("/track-conversion", h.trackConversion)
		validation.GET("/metrics/:landing_page_id", h.landingMetrics)
		validation.POST("/generate-report", h.generateReport)
		validation.POST("/market-signals", h.marketSignals)
		validation.POST("/keyword-analysis", h.keywordAnalysis)
		validation.POST("/validation-plan", h.validationPlan)
	}

	r.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, "route not found")
	})
	return r
}

func (h *handlers) health(c *gin.Context) {
	ok(c, gin.H{"status": "ok", "time": time.Now().UTC()})
}
