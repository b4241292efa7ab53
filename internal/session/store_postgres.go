package session

import (
	"context"
	"database/sql"
	"errors"

	"creatorhub/pkg/utils"
)

// NOTE: This store assumes the following table exists:
//
// CREATE TABLE sessions (
//   id             uuid PRIMARY KEY,
//   user_id        uuid NOT NULL,
//   user_agent     text NOT NULL DEFAULT '',
//   ip_address     text NOT NULL DEFAULT '',
//   expires_at     timestamptz NOT NULL,
//   last_active_at timestamptz NOT NULL,
//   created_at     timestamptz NOT NULL
// );
// CREATE INDEX sessions_user_id_idx ON sessions (user_id);

// PostgresStore persists sessions in Postgres via database/sql (pgx stdlib).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, sess Session) error {
	const q = `
INSERT INTO sessions (id, user_id, user_agent, ip_address, expires_at, last_active_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	_, err := s.db.ExecContext(ctx, q,
		sess.ID,
		sess.UserID,
		sess.UserAgent,
		sess.IPAddress,
		sess.ExpiresAt,
		sess.LastActiveAt,
		sess.CreatedAt,
	)
	return err
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Session, error) {
	const q = `
SELECT id, user_id, user_agent, ip_address, expires_at, last_active_at, created_at
FROM sessions
WHERE id = $1
`
	var sess Session
	if err := s.db.QueryRowContext(ctx, q, id).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.UserAgent,
		&sess.IPAddress,
		&sess.ExpiresAt,
		&sess.LastActiveAt,
		&sess.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return sess, nil
}

// Delete removes the session and reports whether a row was affected.
// Deleting a nonexistent session is not an error.
func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM sessions WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Replace deletes the old session and inserts its successor in one
// transaction. If the delete affects zero rows the transaction still
// commits, but replaced=false and no successor row is written.
func (s *PostgresStore) Replace(ctx context.Context, oldID string, next Session) (bool, error) {
	var replaced bool
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, oldID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		const q = `
INSERT INTO sessions (id, user_id, user_agent, ip_address, expires_at, last_active_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
		if _, err := tx.ExecContext(ctx, q,
			next.ID,
			next.UserID,
			next.UserAgent,
			next.IPAddress,
			next.ExpiresAt,
			next.LastActiveAt,
			next.CreatedAt,
		); err != nil {
			return err
		}
		replaced = true
		return nil
	})
	return replaced, err
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	const q = `
SELECT id, user_id, user_agent, ip_address, expires_at, last_active_at, created_at
FROM sessions
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(
			&sess.ID,
			&sess.UserID,
			&sess.UserAgent,
			&sess.IPAddress,
			&sess.ExpiresAt,
			&sess.LastActiveAt,
			&sess.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	const q = `DELETE FROM sessions WHERE user_id = $1`
	res, err := s.db.ExecContext(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
