package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/guildpost/guildpost/core"
)

// fail translates an error from any pipeline stage into the wire envelope.
// The taxonomy is closed: every kind has an explicit mapping, including
// authorization denials, and anything unclassified becomes a 500 with the
// error message and no stack trace.
func (d *Dispatcher) fail(c *gin.Context, err error) {
	var validationErr *core.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Validation failed",
			"details": validationErr.Details,
		})
		return
	}

	var authnErr *core.AuthenticationError
	if errors.As(err, &authnErr) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": authnErr.Message})
		return
	}

	var authzErr *core.AuthorizationError
	if errors.As(err, &authzErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": authzErr.Message})
		return
	}

	var notFoundErr *core.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}

	var domainErr *core.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.Status, gin.H{"error": domainErr.Message})
		return
	}

	d.log.Error("unhandled action error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
