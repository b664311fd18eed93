package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

const (
	getEditLockSQL = `SELECT project_id, session_id, latest_activity FROM edit_locks WHERE project_id = $1`

	claimEditLockSQL = `
INSERT INTO edit_locks (project_id, session_id, latest_activity)
VALUES ($1, $2, $3)
ON CONFLICT (project_id) DO UPDATE
SET session_id = EXCLUDED.session_id, latest_activity = EXCLUDED.latest_activity
RETURNING project_id, session_id, latest_activity`
)

// EditLockRepository implements ports.EditLockRepository on postgres.
// Locks are seeded by ProjectRepository.Create and removed only by the
// project cascade; a claim recreates a missing row, so a project is
// never left permanently without one.
type EditLockRepository struct {
	pool *pgxpool.Pool
}

func NewEditLockRepository(pool *pgxpool.Pool) *EditLockRepository {
	return &EditLockRepository{pool: pool}
}

func (r *EditLockRepository) Get(ctx context.Context, projectID int64) (*domain.EditLock, error) {
	l, err := scanEditLock(r.pool.QueryRow(ctx, getEditLockSQL, projectID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapError(err, "edit lock")
	}
	return l, nil
}

func (r *EditLockRepository) Update(ctx context.Context, lock domain.EditLock) (*domain.EditLock, error) {
	l, err := scanEditLock(r.pool.QueryRow(ctx, claimEditLockSQL, lock.ProjectID, lock.SessionID, lock.LatestActivity))
	if err != nil {
		return nil, wrapError(err, "edit lock")
	}
	return l, nil
}

func scanEditLock(row pgx.Row) (*domain.EditLock, error) {
	var l domain.EditLock
	if err := row.Scan(&l.ProjectID, &l.SessionID, &l.LatestActivity); err != nil {
		return nil, err
	}
	return &l, nil
}

var _ ports.EditLockRepository = (*EditLockRepository)(nil)
