package auth

import (
	"errors"
	"fmt"
	"time"

	"creatorhub/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single client-visible token failure.
// Bad signature, expiry, wrong issuer, wrong kind and malformed input all
// collapse into it so responses never leak which check failed. The wrapped
// cause stays available for server logs via errors.Unwrap.
var ErrInvalidToken = errors.New("invalid token")

// Codec signs and verifies the two token kinds against distinct secrets.
// It is stateless and safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	return &Codec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}, nil
}

// AccessTTL is exposed for the expires_in field of refresh responses.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

/* ===================== SIGN ===================== */

func (c *Codec) SignAccess(now time.Time, userID, workspaceID string) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: c.registered(now, c.accessTTL),
		UserID:           userID,
		WorkspaceID:      workspaceID,
		TokenKind:        TokenKindAccess,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.accessSecret)
}

func (c *Codec) SignRefresh(now time.Time, userID, sessionID string) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: c.registered(now, c.refreshTTL),
		UserID:           userID,
		SessionID:        sessionID,
		TokenKind:        TokenKindRefresh,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.refreshSecret)
}

/* ===================== VERIFY ===================== */

func (c *Codec) VerifyAccess(tokenString string, now time.Time) (AccessClaims, error) {
	var claims AccessClaims
	if err := c.verify(tokenString, &claims, c.accessSecret, now); err != nil {
		return AccessClaims{}, err
	}
	if claims.TokenKind != TokenKindAccess {
		return AccessClaims{}, fmt.Errorf("%w: token_kind mismatch", ErrInvalidToken)
	}
	if claims.UserID == "" {
		return AccessClaims{}, fmt.Errorf("%w: user_id missing", ErrInvalidToken)
	}
	return claims, nil
}

func (c *Codec) VerifyRefresh(tokenString string, now time.Time) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := c.verify(tokenString, &claims, c.refreshSecret, now); err != nil {
		return RefreshClaims{}, err
	}
	if claims.TokenKind != TokenKindRefresh {
		return RefreshClaims{}, fmt.Errorf("%w: token_kind mismatch", ErrInvalidToken)
	}
	if claims.UserID == "" {
		return RefreshClaims{}, fmt.Errorf("%w: user_id missing", ErrInvalidToken)
	}
	if claims.SessionID == "" {
		return RefreshClaims{}, fmt.Errorf("%w: session_id missing", ErrInvalidToken)
	}
	return claims, nil
}

/* ===================== INTERNAL ===================== */

func (c *Codec) verify(tokenString string, claims jwt.Claims, secret []byte, now time.Time) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if c.audience != "" {
		opts = append(opts, jwt.WithAudience(c.audience))
	}

	parser := jwt.NewParser(opts...)
	if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

func (c *Codec) registered(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Audience:  audienceOrNil(c.audience),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
