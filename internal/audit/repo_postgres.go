package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends events to the auth_audit_events table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO auth_audit_events (
  id, type, user_id, workspace_id, session_id, ip_address, user_agent, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Type,
		e.UserID,
		e.WorkspaceID,
		e.SessionID,
		e.IPAddress,
		e.UserAgent,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}
