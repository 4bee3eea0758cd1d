package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ProblemRadar/internal/domain"
)

func (h *handlers) frameworks(c *gin.Context) {
	ok(c, h.ideas.Frameworks())
}

func (h *handlers) frameworkExamples(c *gin.Context) {
	framework := c.Param("framework")
	examples, err := h.ideas.Examples(framework)
	if errors.Is(err, domain.ErrNotFound) {
		abort(c, http.StatusNotFound, "Framework not found")
		return
	}
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, gin.H{"framework": framework, "examples": examples})
}

func (h *handlers) industries(c *gin.Context) {
	ok(c, h.ideas.Industries())
}

type generateRequest struct {
	FrameworkType string         `json:"framework_type" binding:"required"`
	Problem       domain.Problem `json:"problem"`
	Industry      string         `json:"industry"`
}

func (h *handlers) generateIdea(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	idea, err := h.ideas.Generate(c.Request.Context(), req.FrameworkType, req.Problem, req.Industry)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, idea, gin.H{"framework_used": req.FrameworkType})
}

type batchRequest struct {
	FrameworkType string           `json:"framework_type" binding:"required"`
	Problems      []domain.Problem `json:"problems"`
	Industry      string           `json:"industry"`
}

func (h *handlers) batchGenerate(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.ideas.BatchGenerate(c.Request.Context(), req.FrameworkType, req.Problems, req.Industry)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, result.Ideas, gin.H{
		"count":          len(result.Ideas),
		"failed":         result.Failed,
		"framework_used": req.FrameworkType,
	})
}

func (h *handlers) analyzeCompetition(c *gin.Context) {
	idea, bound := bindIdea(c)
	if !bound {
		return
	}
	ok(c, h.ideas.AnalyzeCompetition(idea))
}

func (h *handlers) estimateMarket(c *gin.Context) {
	idea, bound := bindIdea(c)
	if !bound {
		return
	}
	ok(c, h.ideas.EstimateMarket(idea))
}

func (h *handlers) validateIdea(c *gin.Context) {
	idea, bound := bindIdea(c)
	if !bound {
		return
	}
	ok(c, h.ideas.ValidateIdea(idea))
}

// bindIdea decodes an Idea body and writes the 400 itself on failure.
func bindIdea(c *gin.Context) (domain.Idea, bool) {
	var idea domain.Idea
	if err := c.ShouldBindJSON(&idea); err != nil {
		badRequest(c, err)
		return domain.Idea{}, false
	}
	return idea, true
}
