package httpapi

import (
	"errors"
	"net/http"
	"time"

	"creatorhub/internal/auth"
	"creatorhub/internal/session"
	"creatorhub/pkg/logger"
	"creatorhub/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Refresh failure codes. All map to 401 with cookie clearing; the split
// exists for client telemetry, not for divergent client behavior.
const (
	CodeRefreshMissingToken    = "AUTH_REFRESH_MISSING_TOKEN"
	CodeRefreshInvalidToken    = "AUTH_REFRESH_INVALID_TOKEN"
	CodeRefreshSessionNotFound = "AUTH_REFRESH_SESSION_NOT_FOUND"
	CodeRefreshSessionExpired  = "AUTH_REFRESH_SESSION_EXPIRED"
	CodeRefreshRateLimited     = "AUTH_REFRESH_RATE_LIMITED"
	CodeUnavailable            = "SERVICE_UNAVAILABLE"
)

const (
	refreshCookieName = "refresh_token"
	// accessCookieName exists only to be cleared: browsers that received an
	// access token cookie from an older deployment must not keep it.
	accessCookieName = "access_token"
)

// CookieConfig controls the refresh_token cookie attributes.
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Sessions *session.Service
	Cookies  CookieConfig

	// Redis enables the optional in-flight cap on /auth/refresh. Nil skips
	// the cap; rotation's delete-gating stays the correctness mechanism.
	Redis *redis.Client
}

// Refresh rotates the session named by the refresh_token cookie and returns
// a fresh access token. The new refresh token travels back only as a cookie.
func (h Handlers) Refresh(c *gin.Context) {
	raw, err := c.Cookie(refreshCookieName)
	if err != nil || raw == "" {
		respondErr(c, http.StatusUnauthorized, CodeRefreshMissingToken)
		return
	}

	if h.Redis != nil {
		key := "refresh_inflight:" + c.ClientIP()
		ok, err := utils.AcquireConcurrencyCap(c.Request.Context(), h.Redis, key, 3, 10*time.Second)
		if err == nil && !ok {
			respondErr(c, http.StatusTooManyRequests, CodeRefreshRateLimited)
			return
		}
		if err == nil {
			defer func() {
				_ = utils.ReleaseConcurrencyCap(c.Request.Context(), h.Redis, key)
			}()
		}
		// Cap errors are ignored: a broken limiter must not take down refresh.
	}

	res, err := h.Sessions.Refresh(c.Request.Context(), raw)
	if err != nil {
		h.clearTokenCookies(c)
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			respondErr(c, http.StatusUnauthorized, CodeRefreshInvalidToken)
		case errors.Is(err, session.ErrSessionNotFound):
			respondErr(c, http.StatusUnauthorized, CodeRefreshSessionNotFound)
		case errors.Is(err, session.ErrSessionExpired):
			respondErr(c, http.StatusUnauthorized, CodeRefreshSessionExpired)
		default:
			logger.FromGin(c).Error("refresh failed", "err", err)
			respondErr(c, http.StatusServiceUnavailable, CodeUnavailable)
		}
		return
	}

	h.setRefreshCookie(c, res.Pair.RefreshToken)
	respond(c, http.StatusOK, gin.H{
		"accessToken": res.Pair.AccessToken,
		"expiresIn":   int64(res.Pair.ExpiresIn.Seconds()),
	})
}

// Logout revokes the presented session, if any. Always succeeds: logging out
// with a missing or dead token is "already logged out".
func (h Handlers) Logout(c *gin.Context) {
	raw, _ := c.Cookie(refreshCookieName)
	if err := h.Sessions.Logout(c.Request.Context(), raw); err != nil {
		logger.FromGin(c).Error("logout revoke failed", "err", err)
		respondErr(c, http.StatusServiceUnavailable, CodeUnavailable)
		return
	}
	h.clearTokenCookies(c)
	respond(c, http.StatusOK, gin.H{})
}

// ListSessions returns the caller's active sessions (a "your devices" view).
func (h Handlers) ListSessions(c *gin.Context) {
	ac := auth.FromContext(c.Request.Context())
	sessions, err := h.Sessions.ListForUser(c.Request.Context(), ac.UserID)
	if err != nil {
		respondErr(c, http.StatusServiceUnavailable, CodeUnavailable)
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	respond(c, http.StatusOK, gin.H{"sessions": sessions})
}

// LogoutAll revokes every session of the caller and clears cookies.
func (h Handlers) LogoutAll(c *gin.Context) {
	ac := auth.FromContext(c.Request.Context())
	n, err := h.Sessions.RevokeAllForUser(c.Request.Context(), ac.UserID)
	if err != nil {
		respondErr(c, http.StatusServiceUnavailable, CodeUnavailable)
		return
	}
	h.clearTokenCookies(c)
	respond(c, http.StatusOK, gin.H{"revoked": n})
}

func (h Handlers) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, token, int(h.Cookies.MaxAge.Seconds()), "/auth", h.Cookies.Domain, h.Cookies.Secure, true)
}

func (h Handlers) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, "", -1, "/auth", h.Cookies.Domain, h.Cookies.Secure, true)
	c.SetCookie(accessCookieName, "", -1, "/", h.Cookies.Domain, h.Cookies.Secure, true)
}

func respond(c *gin.Context, status int, data gin.H) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondErr(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code},
	})
}
