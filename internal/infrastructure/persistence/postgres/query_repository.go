package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

const (
	createQuerySQL = `
INSERT INTO queries (project_id, string, result, outdated)
VALUES ($1, $2, NULL, false)
RETURNING id, project_id, string, result, outdated`

	getQueryByIDSQL = `SELECT id, project_id, string, result, outdated FROM queries WHERE id = $1`

	getQueriesByProjectSQL = `
SELECT id, project_id, string, result, outdated
FROM queries WHERE project_id = $1 ORDER BY id`

	updateQuerySQL = `
UPDATE queries SET string = $2, result = $3, outdated = $4
WHERE id = $1
RETURNING id, project_id, string, result, outdated`

	deleteQuerySQL = `DELETE FROM queries WHERE id = $1 RETURNING id, project_id, string, result, outdated`
)

// QueryRepository implements ports.QueryRepository on postgres.
type QueryRepository struct {
	pool *pgxpool.Pool
}

func NewQueryRepository(pool *pgxpool.Pool) *QueryRepository {
	return &QueryRepository{pool: pool}
}

func (r *QueryRepository) Create(ctx context.Context, query domain.Query) (*domain.Query, error) {
	q, err := scanQuery(r.pool.QueryRow(ctx, createQuerySQL, query.ProjectID, query.String))
	if err != nil {
		return nil, wrapError(err, "query")
	}
	return q, nil
}

func (r *QueryRepository) GetByID(ctx context.Context, id int64) (*domain.Query, error) {
	q, err := scanQuery(r.pool.QueryRow(ctx, getQueryByIDSQL, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapError(err, "query")
	}
	return q, nil
}

func (r *QueryRepository) GetAllByProjectID(ctx context.Context, projectID int64) ([]domain.Query, error) {
	rows, err := r.pool.Query(ctx, getQueriesByProjectSQL, projectID)
	if err != nil {
		return nil, wrapError(err, "query")
	}
	defer rows.Close()
	var queries []domain.Query
	for rows.Next() {
		var q domain.Query
		if err := rows.Scan(&q.ID, &q.ProjectID, &q.String, &q.Result, &q.Outdated); err != nil {
			return nil, wrapError(err, "query")
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "query")
	}
	return queries, nil
}

func (r *QueryRepository) Update(ctx context.Context, query domain.Query) (*domain.Query, error) {
	q, err := scanQuery(r.pool.QueryRow(ctx, updateQuerySQL, query.ID, query.String, query.Result, query.Outdated))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("query")
		}
		return nil, wrapError(err, "query")
	}
	return q, nil
}

func (r *QueryRepository) Delete(ctx context.Context, id int64) (*domain.Query, error) {
	q, err := scanQuery(r.pool.QueryRow(ctx, deleteQuerySQL, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("query")
		}
		return nil, wrapError(err, "query")
	}
	return q, nil
}

func scanQuery(row pgx.Row) (*domain.Query, error) {
	var q domain.Query
	if err := row.Scan(&q.ID, &q.ProjectID, &q.String, &q.Result, &q.Outdated); err != nil {
		return nil, err
	}
	return &q, nil
}

var _ ports.QueryRepository = (*QueryRepository)(nil)
