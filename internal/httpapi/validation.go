package httpapi

import (
	"github.com/gin-gonic/gin"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/usecase"
)

func (h *handlers) createSurvey(c *gin.Context) {
	var req usecase.SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	survey, err := h.validation.CreateSurvey(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, survey)
}

func (h *handlers) surveyTemplates(c *gin.Context) {
	ok(c, h.validation.SurveyTemplates())
}

func (h *handlers) submitSurveyResponse(c *gin.Context) {
	var resp domain.SurveyResponse
	if err := c.ShouldBindJSON(&resp); err != nil {
		badRequest(c, err)
		return
	}
	val, err := h.validation.SubmitSurveyResponse(c.Request.Context(), c.Param("id"), resp)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, val)
}

func (h *handlers) surveyResults(c *gin.Context) {
	val, err := h.validation.SurveyResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, val)
}

func (h *handlers) createLandingPage(c *gin.Context) {
	var req usecase.LandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	page, err := h.validation.CreateLandingPage(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, page)
}

func (h *handlers) landingTemplates(c *gin.Context) {
	ok(c, h.validation.LandingTemplates())
}

type conversionRequest struct {
	LandingPageID string         `json:"landing_page_id" binding:"required"`
	EventType     string         `json:"event_type" binding:"required"`
	Data          map[string]any `json:"data"`
}

func (h *handlers) trackConversion(c *gin.Context) {
	var req conversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	event, err := h.validation.TrackConversion(c.Request.Context(), req.LandingPageID, req.EventType, req.Data)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, event, gin.H{"message": "Conversion tracked"})
}

func (h *handlers) landingMetrics(c *gin.Context) {
	metrics, err := h.validation.Metrics(c.Request.Context(), c.Param("landing_page_id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, metrics)
}

func (h *handlers) generateReport(c *gin.Context) {
	var req usecase.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	report, err := h.validation.GenerateReport(c.Request.Context(), req)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, report)
}

func (h *handlers) marketSignals(c *gin.Context) {
	idea, bound := bindIdea(c)
	if !bound {
		return
	}
	ok(c, h.validation.MarketSignals(idea))
}

func (h *handlers) keywordAnalysis(c *gin.Context) {
	idea, bound := bindIdea(c)
	if !bound {
		return
	}
	ok(c, h.validation.AnalyzeKeywords(idea))
}

func (h *handlers) validationPlan(c *gin.Context) {
	idea, bound := bindIdea(c)
	if !bound {
		return
	}
	ok(c, h.validation.ValidationPlan(idea))
}
