package permission

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// Membership is the read-only input to the resolver. The workspace module
// owns the rows; this package only ever reads them.
type Membership struct {
	UserID      string           `json:"user_id" db:"user_id"`
	WorkspaceID string           `json:"workspace_id" db:"workspace_id"`
	Role        Role             `json:"role" db:"role"`
	Status      MembershipStatus `json:"status" db:"status"`
}

// MembershipReader looks up a user's membership in a workspace.
// found=false is a normal outcome (the user simply is not a member);
// errors are reserved for storage failures.
type MembershipReader interface {
	Find(ctx context.Context, userID, workspaceID string) (Membership, bool, error)
}

// PostgresMembershipReader reads the workspace_members table.
type PostgresMembershipReader struct {
	db *sql.DB
}

func NewPostgresMembershipReader(db *sql.DB) *PostgresMembershipReader {
	return &PostgresMembershipReader{db: db}
}

func (r *PostgresMembershipReader) Find(ctx context.Context, userID, workspaceID string) (Membership, bool, error) {
	const q = `
SELECT user_id, workspace_id, role, status
FROM workspace_members
WHERE user_id = $1 AND workspace_id = $2
`
	var m Membership
	if err := r.db.QueryRowContext(ctx, q, userID, workspaceID).Scan(
		&m.UserID,
		&m.WorkspaceID,
		&m.Role,
		&m.Status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Membership{}, false, nil
		}
		return Membership{}, false, err
	}
	return m, true, nil
}

// MemoryMembershipReader is an in-memory reader for tests. Put/Remove let a
// test play the membership-mutation path (which in production lives in the
// workspace module and calls Resolver.Invalidate after writing).
type MemoryMembershipReader struct {
	mu      sync.Mutex
	entries map[string]Membership
}

func NewMemoryMembershipReader() *MemoryMembershipReader {
	return &MemoryMembershipReader{entries: make(map[string]Membership)}
}

func (r *MemoryMembershipReader) Put(m Membership) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[m.UserID+"/"+m.WorkspaceID] = m
}

func (r *MemoryMembershipReader) Remove(userID, workspaceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID+"/"+workspaceID)
}

func (r *MemoryMembershipReader) Find(ctx context.Context, userID, workspaceID string) (Membership, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.entries[userID+"/"+workspaceID]
	return m, ok, nil
}
