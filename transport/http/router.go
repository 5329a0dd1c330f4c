package http

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter mounts every resource behind the dispatcher. Resources are
// registered for all verbs so the dispatcher owns method resolution and can
// answer unregistered verbs with 405 and an Allow header.
func SetupRouter(d *Dispatcher, auth *AuthHandlers, bounties *BountyHandlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Any("/auth/init", d.Handle(auth.Init()))
	router.Any("/auth/login", d.Handle(auth.Login()))
	router.Any("/auth/refresh", d.Handle(auth.Refresh()))
	router.Any("/auth/logout", d.Handle(auth.Logout()))
	router.Any("/me", d.Handle(auth.Me()))

	router.Any("/bounties", d.Handle(bounties.Collection()))
	router.Any("/bounties/:id", d.Handle(bounties.Item()))
	router.Any("/bounties/:id/close", d.Handle(bounties.Close()))

	return router
}
