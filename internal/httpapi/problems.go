package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ProblemRadar/internal/domain"
)

func (h *handlers) listProblems(c *gin.Context) {
	filters := domain.ProblemFilters{
		Category: c.Query("category"),
		Keywords: c.Query("keywords"),
	}
	if raw := c.Query("min_severity"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, fmt.Errorf("min_severity: %w", err))
			return
		}
		filters.MinSeverity = &v
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}
	filters.Limit = limit

	problems, err := h.problems.List(c.Request.Context(), filters)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, problems, gin.H{
		"count": len(problems),
		"filters_applied": gin.H{
			"category":     nullable(filters.Category),
			"min_severity": filters.MinSeverity,
			"keywords":     nullable(filters.Keywords),
		},
	})
}

func (h *handlers) problemCategories(c *gin.Context) {
	ok(c, h.problems.Categories())
}

func (h *handlers) problemSources(c *gin.Context) {
	ok(c, h.problems.Sources())
}

func (h *handlers) trendingProblems(c *gin.Context) {
	trending := h.problems.Trending(c.Request.Context())
	ok(c, trending, gin.H{"count": len(trending)})
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (h *handlers) searchProblems(c *gin.Context) {
	var req searchRequest
	if c.Request.ContentLength != 0 && c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if q := c.Query("query"); q != "" {
		req.Query = q
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}
	if limit != 0 {
		req.Limit = limit
	}

	problems, err := h.problems.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, problems, gin.H{"query": req.Query, "count": len(problems)})
}

func (h *handlers) getProblem(c *gin.Context) {
	problem, err := h.problems.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		abort(c, http.StatusNotFound, "Problem not found")
		return
	}
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, problem)
}

func (h *handlers) similarProblems(c *gin.Context) {
	k, err := intQuery(c, "k")
	if err != nil {
		badRequest(c, err)
		return
	}
	similar, err := h.problems.Similar(c.Request.Context(), c.Param("id"), k)
	if errors.Is(err, domain.ErrNotFound) {
		abort(c, http.StatusNotFound, "Problem not found")
		return
	}
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, similar, gin.H{"count": len(similar)})
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
