package handlers

import (
	"errors"
	"net/http"
	"stackqa/internal/log"
	"stackqa/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors to HTTP status codes. On reads an
// unresolvable target is a 404, on writes it is a bad request.
func statusFor(err error, read bool) int {
	switch {
	case errors.Is(err, services.ErrInvalidTarget):
		if read {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case errors.Is(err, services.ErrVoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidVoteType),
		errors.Is(err, services.ErrDuplicateVote),
		errors.Is(err, services.ErrConstraintViolation),
		errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func renderError(c *gin.Context, err error, read bool) {
	code := statusFor(err, read)
	if code == http.StatusInternalServerError {
		log.L.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// RenderError 写操作错误
func RenderError(c *gin.Context, err error) {
	renderError(c, err, false)
}

// RenderReadError 读操作错误
func RenderReadError(c *gin.Context, err error) {
	renderError(c, err, true)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
