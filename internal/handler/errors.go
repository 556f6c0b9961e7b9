package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Saurav036/nexus/internal/backend"
	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/metrics"
	"github.com/Saurav036/nexus/internal/middleware"
	"github.com/Saurav036/nexus/internal/session"
	"github.com/Saurav036/nexus/internal/validation"

	"github.com/gin-gonic/gin"
)

const (
	msgNetwork    = "Network error - please try again"
	msgUnexpected = "An unexpected error occurred. Please try again later."
	msgInvalid    = "invalid request"
)

// fail maps err to a response and logs it. It is the only place a request
// error is logged.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.failWith(c, op, err, "")
}

// failWith is fail with a friendly message for a backend conflict.
func (h *Handler) failWith(c *gin.Context, op string, err error, conflictMsg string) {
	fields := map[string]any{
		"op":         op,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString(middleware.RequestIDHeader),
		"error":      err.Error(),
	}

	switch {
	case errors.Is(err, backend.ErrCancelled), errors.Is(err, context.Canceled):
		metrics.RecordError(op, "cancelled")
		logger.Debug("request cancelled", fields)
		c.Status(http.StatusNoContent)

	case errors.Is(err, backend.ErrSessionExpired):
		metrics.RecordError(op, "unauthorized")
		logger.Warn("backend rejected session", fields)
		if sid, ok := session.IDFromRequest(c.Request); ok {
			h.sessions.Logout(c.Request.Context(), sid, "")
		}
		session.ClearCookie(c.Writer, h.cookies)
		if middleware.WantsJSON(c.Request) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":    err.Error(),
				"redirect": middleware.LoginPath,
			})
			return
		}
		c.Redirect(http.StatusSeeOther, middleware.LoginPath)

	case backend.IsNetwork(err):
		metrics.RecordError(op, "network")
		logger.Error("backend unreachable", fields)
		c.JSON(http.StatusBadGateway, gin.H{"error": msgNetwork})

	case backend.IsConflict(err):
		metrics.RecordError(op, "conflict")
		logger.Warn("backend conflict", fields)
		msg := conflictMsg
		if msg == "" {
			msg = err.Error()
		}
		c.JSON(http.StatusConflict, gin.H{"error": msg})

	case backend.StatusOf(err) >= 400 && backend.StatusOf(err) < 500:
		status := backend.StatusOf(err)
		metrics.RecordError(op, "client")
		logger.Warn("backend refused request", fields)
		c.JSON(status, gin.H{"error": err.Error()})

	default:
		metrics.RecordError(op, "internal")
		logger.Error("request failed", fields)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgUnexpected})
	}
}

// bind decodes the JSON body into req and answers 422 with field errors
// when it does not validate.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	if fields := validation.FieldErrors(err); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalid})
	return false
}
