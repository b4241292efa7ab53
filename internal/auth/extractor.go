package auth

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	headerWorkspaceID = "X-Workspace-Id"
	headerBrandID     = "X-Brand-Id"
)

// ExtractAuthContext parses the bearer token and routing-hint headers into an
// AuthContext and stores it on the request context. It never aborts: a
// missing, malformed or invalid token yields an anonymous context and the
// failure detail is discarded at this layer. Routes that need identity
// reject later, for the generic reason "not authenticated".
//
// Workspace/brand header ids are copied as-is; they are advisory hints, not
// cryptographically bound to the token. Guards validate them against the
// resource path.
func ExtractAuthContext(codec *Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac := AuthContext{
			WorkspaceID: strings.TrimSpace(c.GetHeader(headerWorkspaceID)),
			BrandID:     strings.TrimSpace(c.GetHeader(headerBrandID)),
		}

		if claims, ok := bearerClaims(codec, c.GetHeader(authorizationHeader)); ok {
			ac.UserID = claims.UserID
			ac.TokenKind = claims.TokenKind
			ac.Claims = claims
		}

		c.Request = c.Request.WithContext(WithAuthContext(c.Request.Context(), ac))
		c.Next()
	}
}

// bearerClaims returns verified access claims, or ok=false for any absent,
// malformed or unverifiable header. The "why" is dropped by design.
func bearerClaims(codec *Codec, header string) (*AccessClaims, bool) {
	raw := strings.TrimSpace(header)
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return nil, false
	}
	claims, err := codec.VerifyAccess(strings.TrimPrefix(raw, bearerPrefix), time.Now())
	if err != nil {
		return nil, false
	}
	return &claims, true
}
