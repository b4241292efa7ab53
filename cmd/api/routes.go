package main

import (
	"creatorhub/internal/guard"
	"creatorhub/internal/httpapi"
	"creatorhub/internal/permission"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, g *guard.Guard) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// AUTH routes. Refresh and logout authenticate via the refresh_token
	// cookie, not the bearer token, so they take no guards.
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)

		// Session management for the signed-in user ("your devices").
		authGroup.GET("/sessions", g.RequireAuthenticated(), h.ListSessions)
		authGroup.POST("/logout-all", g.RequireAuthenticated(), h.LogoutAll)

		// NOTE: Login (magic link / OAuth) lives in the identity service; it
		// calls session.Service.Issue after verifying the credential.
	}

	// Workspace-scoped API. Handlers for brands/content/tasks are owned by
	// their modules; the placeholders demonstrate guard composition.
	v1 := r.Group("/v1")
	{
		workspaces := v1.Group("/workspaces/:workspace_id")

		settings := workspaces.Group("/settings")
		settings.Use(g.RequirePermission(permission.KeyWorkspaceSettingsView))
		{
			settings.GET("", func(c *gin.Context) {
				c.AbortWithStatusJSON(501, gin.H{"error": "settings handler not wired (owned by workspace module)"})
			})
		}

		members := workspaces.Group("/members")
		members.Use(g.RequirePermission(permission.KeyWorkspaceMembersManage))
		{
			members.POST("", func(c *gin.Context) {
				// The workspace module's membership mutations must call
				// Resolver.Invalidate(userID, workspaceID) after writing.
				c.AbortWithStatusJSON(501, gin.H{"error": "members handler not wired (owned by workspace module)"})
			})
		}

		content := workspaces.Group("/content")
		content.Use(g.RequirePermission(permission.KeyContentView))
		{
			content.GET("", func(c *gin.Context) {
				c.AbortWithStatusJSON(501, gin.H{"error": "content handler not wired (owned by studio module)"})
			})
			content.POST("/publish",
				g.RequirePermission(permission.KeyContentPublish),
				func(c *gin.Context) {
					c.AbortWithStatusJSON(501, gin.H{"error": "publish handler not wired (owned by studio module)"})
				})
		}

		tasks := workspaces.Group("/tasks")
		tasks.Use(g.RequirePermission(permission.KeyTaskView))
		{
			tasks.GET("", func(c *gin.Context) {
				c.AbortWithStatusJSON(501, gin.H{"error": "tasks handler not wired (owned by tasks module)"})
			})
		}
	}
}
