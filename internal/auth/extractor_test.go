package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func extractorRouter(t *testing.T, codec *Codec, capture *AuthContext) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ExtractAuthContext(codec))
	r.GET("/x", func(c *gin.Context) {
		*capture = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r
}

func TestExtract_NoHeaderIsAnonymous(t *testing.T) {
	var got AuthContext
	r := extractorRouter(t, testCodec(t), &got)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.Authenticated() {
		t.Fatalf("expected anonymous context, got %+v", got)
	}
}

func TestExtract_MalformedHeaderIsAnonymous(t *testing.T) {
	var got AuthContext
	r := extractorRouter(t, testCodec(t), &got)

	for _, h := range []string{"Token abc", "Bearer", "bearer abc", "abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", h)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("header %q: expected 200, got %d", h, w.Code)
		}
		if got.Authenticated() {
			t.Fatalf("header %q: expected anonymous context", h)
		}
	}
}

func TestExtract_InvalidTokenIsAnonymous(t *testing.T) {
	codec := testCodec(t)
	var got AuthContext
	r := extractorRouter(t, codec, &got)

	// Expired token: signed in the past, verified against the real clock.
	past := time.Now().Add(-2 * time.Hour)
	tok, err := codec.SignAccess(past, "u1", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.Authenticated() {
		t.Fatalf("expected anonymous context for expired token")
	}
}

func TestExtract_ValidTokenPopulatesContext(t *testing.T) {
	codec := testCodec(t)
	var got AuthContext
	r := extractorRouter(t, codec, &got)

	tok, err := codec.SignAccess(time.Now(), "u1", "ws-hint")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("X-Workspace-Id", "ws-1")
	req.Header.Set("X-Brand-Id", "br-1")
	r.ServeHTTP(w, req)

	if !got.Authenticated() || got.UserID != "u1" {
		t.Fatalf("expected authenticated u1, got %+v", got)
	}
	if got.TokenKind != TokenKindAccess {
		t.Fatalf("expected access kind, got %q", got.TokenKind)
	}
	// Headers win over the token's workspace hint; they are validated later
	// by the guards, not here.
	if got.WorkspaceID != "ws-1" || got.BrandID != "br-1" {
		t.Fatalf("expected header ids copied, got %+v", got)
	}
	if got.Claims == nil || got.Claims.UserID != "u1" {
		t.Fatalf("expected raw claims preserved")
	}
}

func TestExtract_HeadersWithoutTokenStillCopied(t *testing.T) {
	var got AuthContext
	r := extractorRouter(t, testCodec(t), &got)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Workspace-Id", "ws-9")
	r.ServeHTTP(w, req)

	if got.Authenticated() {
		t.Fatalf("expected anonymous")
	}
	if got.WorkspaceID != "ws-9" {
		t.Fatalf("expected workspace hint copied, got %+v", got)
	}
}
