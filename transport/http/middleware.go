package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/guildpost/guildpost/core"
)

// resolveIdentity reads the bearer credential and turns it into a caller
// identity. A missing, malformed or unverifiable token yields the anonymous
// identity, never an error: authentication failure is "no identity", and the
// private-action gate decides whether that matters.
func (d *Dispatcher) resolveIdentity(c *gin.Context) core.Identity {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return core.Identity{}
	}

	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return core.Identity{}
	}
	token := auth[len(prefix):]

	session, err := d.auth.ValidateAccessToken(c.Request.Context(), token)
	if err != nil {
		d.log.Debug("bearer token rejected", zap.Error(err))
		return core.Identity{}
	}

	user := session.User
	return core.Identity{User: &user}
}
