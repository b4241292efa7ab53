package session

import (
	"context"
	"errors"
	"time"
)

// Session is one outstanding refresh-token grant.
//
// Invariants:
//   - One session = one outstanding refresh token. Rotation always deletes the
//     row and creates a replacement; rows are never renewed in place.
//   - The row is the authority for refresh validity. A refresh JWT whose
//     session row is gone is dead, no matter how long its exp claim runs.
type Session struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	UserAgent    string    `json:"user_agent,omitempty" db:"user_agent"`
	IPAddress    string    `json:"ip_address,omitempty" db:"ip_address"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	LastActiveAt time.Time `json:"last_active_at" db:"last_active_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

var (
	// ErrSessionNotFound: the session row does not exist. Covers both "never
	// existed" and "already rotated/revoked"; the two are indistinguishable
	// on purpose, which is what makes rotated refresh tokens single-use.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired: the row exists but is past expires_at.
	ErrSessionExpired = errors.New("session expired")
)

// Store is the persistence contract for sessions.
//
// Delete reports whether a row was actually removed; deleting a nonexistent
// session is not an error.
//
// Replace is rotation's primitive: atomically delete the old row and insert
// its successor. The old-row delete is the gate — replaced=false means the
// old session was already consumed and the rotation must abort, so two
// racing rotations off one refresh token can never both succeed.
type Store interface {
	Create(ctx context.Context, s Session) error
	FindByID(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) (bool, error)
	Replace(ctx context.Context, oldID string, next Session) (replaced bool, err error)
	ListByUser(ctx context.Context, userID string) ([]Session, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
