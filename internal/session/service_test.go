package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"creatorhub/internal/audit"
	"creatorhub/internal/auth"
	"creatorhub/internal/config"
)

func testService(t *testing.T) (*Service, *MemoryStore, *audit.MemoryRepo) {
	t.Helper()
	codec, err := auth.NewCodec(config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "creatorhub",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	store := NewMemoryStore()
	auditRepo := audit.NewMemoryRepo()
	svc := NewService(store, codec, audit.NewService(auditRepo), 30*24*time.Hour)
	return svc, store, auditRepo
}

func TestIssue_CreatesSessionAndPair(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	pair, sess, err := svc.Issue(ctx, "u1", "ua/1.0", "10.0.0.1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}
	if pair.ExpiresIn != 15*time.Minute {
		t.Fatalf("expected expires_in from codec, got %v", pair.ExpiresIn)
	}

	got, err := store.FindByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.UserID != "u1" || got.UserAgent != "ua/1.0" || got.IPAddress != "10.0.0.1" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestRefresh_RotatesSession(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	pair, old, err := svc.Issue(ctx, "u1", "ua", "ip")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	res, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res.UserID != "u1" {
		t.Fatalf("expected rotation to report the session's user, got %q", res.UserID)
	}

	// Old session is gone.
	if _, err := store.FindByID(ctx, old.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected old session deleted, got %v", err)
	}
	// New session exists and differs.
	if res.Session.ID == old.ID {
		t.Fatalf("expected a fresh session id")
	}
	if _, err := store.FindByID(ctx, res.Session.ID); err != nil {
		t.Fatalf("expected new session present: %v", err)
	}

	// Replaying the original refresh token fails with SESSION_NOT_FOUND.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on replay, got %v", err)
	}

	// The new refresh token works exactly once more.
	if _, err := svc.Refresh(ctx, res.Pair.RefreshToken); err != nil {
		t.Fatalf("expected new refresh token to rotate: %v", err)
	}
}

func TestRefresh_ExpiredSessionIsRevoked(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	pair, sess, err := svc.Issue(ctx, "u1", "ua", "ip")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Backdate the stored row so the session check, not the JWT's own
	// 30-day expiry, is what fires.
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// Revoked as a side effect, not merely rejected.
	if _, err := store.FindByID(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session deleted, got %v", err)
	}
}

func TestRefresh_RejectsGarbageToken(t *testing.T) {
	svc, _, _ := testService(t)
	if _, err := svc.Refresh(context.Background(), "not-a-jwt"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefresh_AbortsWhenDeleteRaces(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	pair, sess, err := svc.Issue(ctx, "u1", "ua", "ip")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Simulate a concurrent rotation consuming the session between lookup
	// and delete: the store loses the row underneath the service.
	racing := &racingStore{MemoryStore: store, victim: sess.ID}
	svc.store = racing

	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound when replace finds no row, got %v", err)
	}
	if got, _ := store.ListByUser(ctx, "u1"); len(got) != 0 {
		t.Fatalf("aborted rotation must not create a replacement session, got %v", got)
	}
}

// racingStore serves FindByID normally but makes the victim row vanish
// before the service's gating replace runs.
type racingStore struct {
	*MemoryStore
	victim string
}

func (r *racingStore) Replace(ctx context.Context, oldID string, next Session) (bool, error) {
	if oldID == r.victim {
		_, _ = r.MemoryStore.Delete(ctx, oldID)
		return false, nil
	}
	return r.MemoryStore.Replace(ctx, oldID, next)
}

func TestLogout_IsIdempotent(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	pair, sess, err := svc.Issue(ctx, "u1", "ua", "ip")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := store.FindByID(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session revoked, got %v", err)
	}

	// Second logout with the same token, an empty token and garbage are all
	// still successful ("already logged out").
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("repeat logout: %v", err)
	}
	if err := svc.Logout(ctx, ""); err != nil {
		t.Fatalf("empty logout: %v", err)
	}
	if err := svc.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("garbage logout: %v", err)
	}
}

func TestRevokeAllForUser(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := svc.Issue(ctx, "u1", "ua", "ip"); err != nil {
			t.Fatalf("issue: %v", err)
		}
	}
	if _, _, err := svc.Issue(ctx, "u2", "ua", "ip"); err != nil {
		t.Fatalf("issue: %v", err)
	}

	n, err := svc.RevokeAllForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 revoked, got %d", n)
	}

	left, err := store.ListByUser(ctx, "u2")
	if err != nil || len(left) != 1 {
		t.Fatalf("expected u2 session untouched, got %v %v", left, err)
	}
}

func TestRefresh_EmitsAuditEvents(t *testing.T) {
	svc, _, auditRepo := testService(t)
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u1", "ua", "ip")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	var types []audit.EventType
	for _, e := range auditRepo.Events() {
		types = append(types, e.Type)
	}
	if len(types) != 2 || types[0] != audit.EventTypeSessionIssued || types[1] != audit.EventTypeSessionRotated {
		t.Fatalf("unexpected audit trail: %v", types)
	}
}
