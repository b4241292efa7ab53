package auth

import "github.com/golang-jwt/jwt/v5"

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// AccessClaims is the payload of a short-lived access token.
// Multi-tenant note: WorkspaceID here is a routing hint copied at issuance,
// not an authorization grant; guards always re-check membership server-side.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID      string    `json:"user_id"`
	WorkspaceID string    `json:"workspace_id,omitempty"`
	TokenKind   TokenKind `json:"token_kind"`
}

// RefreshClaims is the payload of a long-lived refresh token.
// SessionID points at the server-side session row; the row is the authority,
// the token is only a capability pointer. Refresh tokens never carry a
// workspace or role.
type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	TokenKind TokenKind `json:"token_kind"`
}
