package session

import (
	"context"
	"errors"
	"time"

	"creatorhub/internal/audit"
	"creatorhub/internal/auth"

	"github.com/google/uuid"
)

// Service implements the refresh-token lifecycle on top of Store + Codec:
// issuance on login, strict rotation-on-use, logout, and bulk revocation.
//
// Rotation invariant:
//   - A refresh token is single-use. The old session row is deleted before the
//     replacement is created, and the delete is the gate: if it affects zero
//     rows (a concurrent rotation won the race, or the token was already
//     rotated), the whole rotation aborts with ErrSessionNotFound.
type Service struct {
	store      Store
	codec      *auth.Codec
	audit      *audit.Service
	sessionTTL time.Duration

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store, codec *auth.Codec, auditSvc *audit.Service, sessionTTL time.Duration) *Service {
	return &Service{
		store:      store,
		codec:      codec,
		audit:      auditSvc,
		sessionTTL: sessionTTL,
		clock:      time.Now,
	}
}

// TokenPair is what a login or rotation hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token lifetime, for the response body.
	ExpiresIn time.Duration
}

// Issue creates a fresh session for an already-authenticated user and signs
// the matching token pair. Credential validation (magic link, OAuth) happens
// upstream and is out of scope here.
func (s *Service) Issue(ctx context.Context, userID, userAgent, ipAddress string) (TokenPair, Session, error) {
	if userID == "" {
		return TokenPair{}, Session{}, errors.New("user id is required")
	}

	now := s.clock().UTC()
	sess := Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
		ExpiresAt:    now.Add(s.sessionTTL),
		LastActiveAt: now,
		CreatedAt:    now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return TokenPair{}, Session{}, err
	}

	pair, err := s.signPair(now, userID, sess.ID)
	if err != nil {
		return TokenPair{}, Session{}, err
	}

	s.logEvent(ctx, audit.EventTypeSessionIssued, userID, sess.ID, ipAddress, userAgent)
	return pair, sess, nil
}

// RefreshResult carries everything the refresh endpoint needs.
type RefreshResult struct {
	UserID  string
	Pair    TokenPair
	Session Session
}

// Refresh runs the rotation protocol for a presented refresh token.
//
// Failure modes:
//   - auth.ErrInvalidToken: signature/expiry/kind failure on the JWT itself.
//   - ErrSessionNotFound: no session row (never issued, already rotated, or
//     revoked). A replayed refresh token lands here.
//   - ErrSessionExpired: row exists but is past expires_at; the row is revoked
//     as a side effect so the token can never be retried.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (RefreshResult, error) {
	now := s.clock().UTC()

	claims, err := s.codec.VerifyRefresh(refreshToken, now)
	if err != nil {
		return RefreshResult{}, err
	}

	old, err := s.store.FindByID(ctx, claims.SessionID)
	if err != nil {
		return RefreshResult{}, err
	}

	if old.Expired(now) {
		// Defensive revoke: the row is dead weight and the token must not
		// become usable again through any clock weirdness.
		if _, err := s.store.Delete(ctx, old.ID); err != nil {
			return RefreshResult{}, err
		}
		s.logEvent(ctx, audit.EventTypeSessionRevoked, old.UserID, old.ID, old.IPAddress, old.UserAgent)
		return RefreshResult{}, ErrSessionExpired
	}

	next := Session{
		ID:           uuid.NewString(),
		UserID:       old.UserID,
		UserAgent:    old.UserAgent,
		IPAddress:    old.IPAddress,
		ExpiresAt:    now.Add(s.sessionTTL),
		LastActiveAt: now,
		CreatedAt:    now,
	}

	// Gate on the old-row delete inside Replace. Not replaced means another
	// rotation consumed this session between FindByID and here; abort
	// instead of minting a second pair off one refresh token.
	replaced, err := s.store.Replace(ctx, old.ID, next)
	if err != nil {
		return RefreshResult{}, err
	}
	if !replaced {
		return RefreshResult{}, ErrSessionNotFound
	}

	pair, err := s.signPair(now, old.UserID, next.ID)
	if err != nil {
		return RefreshResult{}, err
	}

	s.logEvent(ctx, audit.EventTypeSessionRotated, old.UserID, next.ID, old.IPAddress, old.UserAgent)
	return RefreshResult{UserID: old.UserID, Pair: pair, Session: next}, nil
}

// Logout revokes the session named by the refresh token, if any. It is
// idempotent: an absent, invalid or already-rotated token is still a
// successful logout. Only storage failures surface.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.codec.VerifyRefresh(refreshToken, s.clock().UTC())
	if err != nil {
		// Already unusable; nothing to revoke.
		return nil
	}
	deleted, err := s.store.Delete(ctx, claims.SessionID)
	if err != nil {
		return err
	}
	if deleted {
		s.logEvent(ctx, audit.EventTypeSessionRevoked, claims.UserID, claims.SessionID, "", "")
	}
	return nil
}

// RevokeAllForUser implements "log out everywhere".
func (s *Service) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logEvent(ctx, audit.EventTypeSessionRevoked, userID, "", "", "")
	}
	return n, nil
}

// ListForUser returns the user's active sessions (for a "your devices" view).
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) signPair(now time.Time, userID, sessionID string) (TokenPair, error) {
	access, err := s.codec.SignAccess(now, userID, "")
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.SignRefresh(now, userID, sessionID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.codec.AccessTTL(),
	}, nil
}

// logEvent is best-effort; session flows never fail on audit errors.
func (s *Service) logEvent(ctx context.Context, typ audit.EventType, userID, sessionID, ip, userAgent string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Append(ctx, audit.Event{
		Type:      typ,
		UserID:    userID,
		SessionID: sessionID,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}
