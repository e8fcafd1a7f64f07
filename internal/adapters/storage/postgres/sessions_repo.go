package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"zoonica-gateway/internal/domain/session"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	token          TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	email          TEXT NOT NULL DEFAULT '',
	name           TEXT NOT NULL DEFAULT '',
	upstream_token TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL,
	expires_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);
`

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

// Migrate crea la tabla si no existe.
func (r *SessionsRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, sessionsSchema)
	return err
}

func (r *SessionsRepo) Create(ctx context.Context, s session.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (
			token, user_id, email, name, upstream_token,
			created_at, expires_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		s.Token,
		s.UserID,
		s.Email,
		s.Name,
		s.UpstreamToken,
		s.CreatedAt,
		s.ExpiresAt,
	)
	return err
}

func (r *SessionsRepo) Get(ctx context.Context, token string) (session.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return session.Session{}, session.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			token, user_id, email, name, upstream_token,
			created_at, expires_at
		FROM sessions
		WHERE token = $1
	`, token)

	var s session.Session
	if err := row.Scan(
		&s.Token,
		&s.UserID,
		&s.Email,
		&s.Name,
		&s.UpstreamToken,
		&s.CreatedAt,
		&s.ExpiresAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, err
	}
	return s, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (r *SessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
