package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

const (
	createAccessSQL = `
INSERT INTO accesses (role, user_id, project_id)
VALUES ($1, $2, $3)
RETURNING id, role, user_id, project_id`

	getAccessByIDSQL = `SELECT id, role, user_id, project_id FROM accesses WHERE id = $1`

	getAccessByUserAndProjectSQL = `
SELECT id, role, user_id, project_id FROM accesses
WHERE user_id = $1 AND project_id = $2`

	listAccessByProjectSQL = `
SELECT a.id, a.role, a.user_id, u.username
FROM accesses a
JOIN users u ON u.id = a.user_id
WHERE a.project_id = $1
ORDER BY a.id`

	updateAccessRoleSQL = `
UPDATE accesses SET role = $2 WHERE id = $1
RETURNING id, role, user_id, project_id`

	deleteAccessSQL = `DELETE FROM accesses WHERE id = $1 RETURNING id, role, user_id, project_id`
)

// AccessRepository implements ports.AccessRepository on postgres.
type AccessRepository struct {
	pool *pgxpool.Pool
}

func NewAccessRepository(pool *pgxpool.Pool) *AccessRepository {
	return &AccessRepository{pool: pool}
}

func (r *AccessRepository) Create(ctx context.Context, access domain.Access) (*domain.Access, error) {
	a, err := scanAccess(r.pool.QueryRow(ctx, createAccessSQL, access.Role, access.UserID, access.ProjectID))
	if err != nil {
		return nil, wrapError(err, "access")
	}
	return a, nil
}

func (r *AccessRepository) GetByID(ctx context.Context, id int64) (*domain.Access, error) {
	a, err := scanAccess(r.pool.QueryRow(ctx, getAccessByIDSQL, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapError(err, "access")
	}
	return a, nil
}

func (r *AccessRepository) GetByUserAndProject(ctx context.Context, userID, projectID int64) (*domain.Access, error) {
	a, err := scanAccess(r.pool.QueryRow(ctx, getAccessByUserAndProjectSQL, userID, projectID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapError(err, "access")
	}
	return a, nil
}

func (r *AccessRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.AccessInfo, error) {
	rows, err := r.pool.Query(ctx, listAccessByProjectSQL, projectID)
	if err != nil {
		return nil, wrapError(err, "access")
	}
	defer rows.Close()
	var infos []domain.AccessInfo
	for rows.Next() {
		var info domain.AccessInfo
		if err := rows.Scan(&info.ID, &info.Role, &info.UserID, &info.Username); err != nil {
			return nil, wrapError(err, "access")
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "access")
	}
	return infos, nil
}

func (r *AccessRepository) UpdateRole(ctx context.Context, id int64, role domain.Role) (*domain.Access, error) {
	a, err := scanAccess(r.pool.QueryRow(ctx, updateAccessRoleSQL, id, role))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("access")
		}
		return nil, wrapError(err, "access")
	}
	return a, nil
}

func (r *AccessRepository) Delete(ctx context.Context, id int64) (*domain.Access, error) {
	a, err := scanAccess(r.pool.QueryRow(ctx, deleteAccessSQL, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("access")
		}
		return nil, wrapError(err, "access")
	}
	return a, nil
}

func scanAccess(row pgx.Row) (*domain.Access, error) {
	var a domain.Access
	if err := row.Scan(&a.ID, &a.Role, &a.UserID, &a.ProjectID); err != nil {
		return nil, err
	}
	return &a, nil
}

var _ ports.AccessRepository = (*AccessRepository)(nil)
