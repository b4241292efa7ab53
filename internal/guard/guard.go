package guard

import (
	"net/http"

	"creatorhub/internal/audit"
	"creatorhub/internal/auth"
	"creatorhub/internal/permission"

	"github.com/gin-gonic/gin"
)

// Client-visible authorization error codes. Unlike token failures these are
// operationally actionable (missing header vs. wrong tenant vs. insufficient
// role), so they stay distinct.
const (
	CodeAuthRequired        = "AUTH_REQUIRED"
	CodeWorkspaceIDRequired = "WORKSPACE_ID_REQUIRED"
	CodeWorkspaceMismatch   = "WORKSPACE_MISMATCH"
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodeAuthUnavailable     = "AUTH_UNAVAILABLE"
)

// pathWorkspaceParam is the route param guards compare the header against.
const pathWorkspaceParam = "workspace_id"

// Guard builds composable request preconditions over the extractor's
// AuthContext. Guards are predicates: first failure aborts, no guard does
// I/O beyond the resolver's (cached) membership lookup.
type Guard struct {
	resolver *permission.Resolver
	audit    *audit.Service
}

func New(resolver *permission.Resolver, auditSvc *audit.Service) *Guard {
	return &Guard{resolver: resolver, audit: auditSvc}
}

// RequireAuthenticated rejects anonymous requests. Deliberately does not
// distinguish "no token" from "bad token"; the extractor already collapsed
// both into anonymity.
func (g *Guard) RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.FromContext(c.Request.Context()).Authenticated() {
			abort(c, http.StatusUnauthorized, CodeAuthRequired)
			return
		}
		c.Next()
	}
}

// RequireWorkspaceMatch enforces the two-step tenancy contract: the
// X-Workspace-Id header must be present, and on workspace-scoped paths it
// must equal the :workspace_id path segment. This blocks a valid token for
// workspace A from acting on a known resource id of workspace B.
func (g *Guard) RequireWorkspaceMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac := auth.FromContext(c.Request.Context())
		if ac.WorkspaceID == "" {
			abort(c, http.StatusBadRequest, CodeWorkspaceIDRequired)
			return
		}
		if pathID := c.Param(pathWorkspaceParam); pathID != "" && pathID != ac.WorkspaceID {
			abort(c, http.StatusForbidden, CodeWorkspaceMismatch)
			return
		}
		c.Next()
	}
}

// RequirePermission implies RequireAuthenticated and RequireWorkspaceMatch:
// a permission check is meaningless without a resolved user+workspace pair.
func (g *Guard) RequirePermission(key permission.Key) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac := auth.FromContext(c.Request.Context())
		if !ac.Authenticated() {
			abort(c, http.StatusUnauthorized, CodeAuthRequired)
			return
		}
		if ac.WorkspaceID == "" {
			abort(c, http.StatusBadRequest, CodeWorkspaceIDRequired)
			return
		}
		if pathID := c.Param(pathWorkspaceParam); pathID != "" && pathID != ac.WorkspaceID {
			abort(c, http.StatusForbidden, CodeWorkspaceMismatch)
			return
		}

		ok, err := g.resolver.HasPermission(c.Request.Context(), ac.UserID, ac.WorkspaceID, key)
		if err != nil {
			// Storage failure, not an authorization decision.
			abort(c, http.StatusServiceUnavailable, CodeAuthUnavailable)
			return
		}
		if !ok {
			if g.audit != nil {
				_ = g.audit.LogPermissionDenied(c.Request.Context(), ac.UserID, ac.WorkspaceID, c.ClientIP(), string(key))
			}
			abort(c, http.StatusForbidden, CodePermissionDenied)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code},
	})
}
