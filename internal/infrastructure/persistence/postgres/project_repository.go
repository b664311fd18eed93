package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

const (
	createProjectSQL = `
INSERT INTO projects (name, components_info, owner_id)
VALUES ($1, $2, $3)
RETURNING id, name, components_info, owner_id`

	createOwnerAccessSQL = `INSERT INTO accesses (role, user_id, project_id) VALUES ($1, $2, $3)`
	createEditLockSQL    = `INSERT INTO edit_locks (project_id, session_id, latest_activity) VALUES ($1, $2, now())`

	getProjectByIDSQL = `SELECT id, name, components_info, owner_id FROM projects WHERE id = $1`

	listProjectInfoSQL = `
SELECT p.id, p.name, p.owner_id, a.role
FROM projects p
JOIN accesses a ON a.project_id = p.id
WHERE a.user_id = $1
ORDER BY p.id`

	invalidateQueriesSQL = `UPDATE queries SET outdated = true WHERE project_id = $1`

	updateProjectSQL = `
UPDATE projects SET name = $2, components_info = $3, owner_id = $4
WHERE id = $1
RETURNING id, name, components_info, owner_id`

	deleteProjectQueriesSQL  = `DELETE FROM queries WHERE project_id = $1`
	deleteProjectAccessesSQL = `DELETE FROM accesses WHERE project_id = $1`
	deleteProjectLockSQL     = `DELETE FROM edit_locks WHERE project_id = $1`
	deleteProjectSQL         = `DELETE FROM projects WHERE id = $1 RETURNING id, name, components_info, owner_id`
)

// ProjectRepository implements ports.ProjectRepository on postgres.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// Create inserts the project, the owner's Editor access and the edit
// lock in one transaction, so a project never exists half-initialized.
func (r *ProjectRepository) Create(ctx context.Context, project domain.Project, sessionID int64) (*domain.Project, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, wrapError(err, "project")
	}
	defer tx.Rollback(ctx)

	p, err := scanProject(tx.QueryRow(ctx, createProjectSQL, project.Name, project.ComponentsInfo, project.OwnerID))
	if err != nil {
		return nil, wrapError(err, "project")
	}
	if _, err := tx.Exec(ctx, createOwnerAccessSQL, domain.RoleEditor, project.OwnerID, p.ID); err != nil {
		return nil, wrapError(err, "access")
	}
	if _, err := tx.Exec(ctx, createEditLockSQL, p.ID, sessionID); err != nil {
		return nil, wrapError(err, "edit lock")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrapError(err, "project")
	}
	return p, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, getProjectByIDSQL, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapError(err, "project")
	}
	return p, nil
}

func (r *ProjectRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]domain.ProjectInfo, error) {
	rows, err := r.pool.Query(ctx, listProjectInfoSQL, userID)
	if err != nil {
		return nil, wrapError(err, "project")
	}
	defer rows.Close()
	var infos []domain.ProjectInfo
	for rows.Next() {
		var info domain.ProjectInfo
		if err := rows.Scan(&info.ProjectID, &info.Name, &info.OwnerID, &info.Role); err != nil {
			return nil, wrapError(err, "project")
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "project")
	}
	return infos, nil
}

// Update writes the project row. When invalidate is set, every query of
// the project is marked outdated first, in the same transaction: either
// the new components land together with the stale flags, or neither does.
func (r *ProjectRepository) Update(ctx context.Context, project domain.Project, invalidate bool) (*domain.Project, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, wrapError(err, "project")
	}
	defer tx.Rollback(ctx)

	if invalidate {
		if _, err := tx.Exec(ctx, invalidateQueriesSQL, project.ID); err != nil {
			return nil, wrapError(err, "query")
		}
	}
	p, err := scanProject(tx.QueryRow(ctx, updateProjectSQL, project.ID, project.Name, project.ComponentsInfo, project.OwnerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("project")
		}
		return nil, wrapError(err, "project")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrapError(err, "project")
	}
	return p, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) (*domain.Project, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, wrapError(err, "project")
	}
	defer tx.Rollback(ctx)

	for _, sql := range []string{deleteProjectQueriesSQL, deleteProjectAccessesSQL, deleteProjectLockSQL} {
		if _, err := tx.Exec(ctx, sql, id); err != nil {
			return nil, wrapError(err, "project")
		}
	}
	p, err := scanProject(tx.QueryRow(ctx, deleteProjectSQL, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("project")
		}
		return nil, wrapError(err, "project")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrapError(err, "project")
	}
	return p, nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.Name, &p.ComponentsInfo, &p.OwnerID); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)
