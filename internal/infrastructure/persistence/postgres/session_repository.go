package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

const (
	createSessionSQL = `
INSERT INTO sessions (user_id, access_token, refresh_token, updated_at)
VALUES ($1, $2, $3, now())
RETURNING id, user_id, access_token, refresh_token, updated_at`

	getSessionByAccessSQL = `
SELECT id, user_id, access_token, refresh_token, updated_at
FROM sessions WHERE access_token = $1`

	getSessionByRefreshSQL = `
SELECT id, user_id, access_token, refresh_token, updated_at
FROM sessions WHERE refresh_token = $1`

	// Lookup and overwrite in one statement: of two concurrent rotations
	// presenting the same refresh token, only one matches the row.
	replaceSessionSQL = `
UPDATE sessions
SET access_token = $2, refresh_token = $3, updated_at = now()
WHERE refresh_token = $1
RETURNING id, user_id, access_token, refresh_token, updated_at`

	deleteSessionByAccessSQL = `
DELETE FROM sessions WHERE access_token = $1
RETURNING id, user_id, access_token, refresh_token, updated_at`

	deleteSessionByRefreshSQL = `
DELETE FROM sessions WHERE refresh_token = $1
RETURNING id, user_id, access_token, refresh_token, updated_at`

	deleteStaleSessionsSQL = `DELETE FROM sessions WHERE updated_at < $1`
)

// SessionRepository implements ports.SessionRepository on postgres.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, userID int64, accessToken, refreshToken string) (*domain.Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, createSessionSQL, userID, accessToken, refreshToken))
	if err != nil {
		return nil, wrapError(err, "session")
	}
	return s, nil
}

func (r *SessionRepository) GetByToken(ctx context.Context, kind domain.TokenKind, token string) (*domain.Session, error) {
	sql, err := byKind(kind, getSessionByAccessSQL, getSessionByRefreshSQL)
	if err != nil {
		return nil, err
	}
	s, err := scanSession(r.pool.QueryRow(ctx, sql, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapError(err, "session")
	}
	return s, nil
}

func (r *SessionRepository) Replace(ctx context.Context, refreshToken, newAccessToken, newRefreshToken string) (*domain.Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, replaceSessionSQL, refreshToken, newAccessToken, newRefreshToken))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("session")
		}
		return nil, wrapError(err, "session")
	}
	return s, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, kind domain.TokenKind, token string) (*domain.Session, error) {
	sql, err := byKind(kind, deleteSessionByAccessSQL, deleteSessionByRefreshSQL)
	if err != nil {
		return nil, err
	}
	s, err := scanSession(r.pool.QueryRow(ctx, sql, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("session")
		}
		return nil, wrapError(err, "session")
	}
	return s, nil
}

func (r *SessionRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, deleteStaleSessionsSQL, cutoff)
	if err != nil {
		return 0, wrapError(err, "session")
	}
	return tag.RowsAffected(), nil
}

func byKind(kind domain.TokenKind, accessSQL, refreshSQL string) (string, error) {
	switch kind {
	case domain.TokenAccess:
		return accessSQL, nil
	case domain.TokenRefresh:
		return refreshSQL, nil
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
