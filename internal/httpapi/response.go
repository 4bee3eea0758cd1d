package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ProblemRadar/internal/domain"
)

const internalErrorMessage = "internal server error"

// ok writes the success envelope; extra keys are merged next to data.
func ok(c *gin.Context, data any, extra ...gin.H) {
	body := gin.H{"success": true, "data": data}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	c.JSON(http.StatusOK, body)
}

// fail maps err to a status code and writes the error envelope. Causes of
// internal errors are logged, never returned.
func fail(c *gin.Context, log *slog.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = internalErrorMessage
		if log != nil {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err)
		}
	}
	abort(c, status, message)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, err error) {
	abort(c, http.StatusBadRequest, "invalid request: "+err.Error())
}
