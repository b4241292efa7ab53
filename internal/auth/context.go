package auth

import "context"

// AuthContext is the immutable per-request identity value produced by the
// extractor. Zero-value fields mean "absent": an anonymous request, or a
// request with no workspace/brand selected. Absence is a valid state here;
// guards decide whether it is acceptable for a given route.
type AuthContext struct {
	UserID      string
	WorkspaceID string
	BrandID     string
	TokenKind   TokenKind

	// Claims holds the verified access claims when authenticated, nil otherwise.
	Claims *AccessClaims
}

// Authenticated reports whether a verified user identity is present.
func (a AuthContext) Authenticated() bool { return a.UserID != "" }

type ctxKey int

const ctxAuth ctxKey = iota

// WithAuthContext stores the request auth context.
func WithAuthContext(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, ctxAuth, ac)
}

// FromContext returns the auth context, or the anonymous zero value if the
// extractor did not run.
func FromContext(ctx context.Context) AuthContext {
	if v, ok := ctx.Value(ctxAuth).(AuthContext); ok {
		return v
	}
	return AuthContext{}
}
