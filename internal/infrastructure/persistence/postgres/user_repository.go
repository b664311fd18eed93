package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

const (
	createUserSQL = `
INSERT INTO users (username, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, username, email, password_hash`

	getUserByIDSQL       = `SELECT id, username, email, password_hash FROM users WHERE id = $1`
	getUserByUsernameSQL = `SELECT id, username, email, password_hash FROM users WHERE username = $1`
	getUserByEmailSQL    = `SELECT id, username, email, password_hash FROM users WHERE email = $1`
	getUsersByIDsSQL     = `SELECT id, username FROM users WHERE id = ANY($1) ORDER BY id`

	updateUserSQL = `
UPDATE users SET username = $2, email = $3, password_hash = $4
WHERE id = $1
RETURNING id, username, email, password_hash`

	deleteUserSQL = `DELETE FROM users WHERE id = $1 RETURNING id, username, email, password_hash`

	// Application-layer cascade, dependents before principals.
	deleteOwnedProjectQueriesSQL  = `DELETE FROM queries WHERE project_id IN (SELECT id FROM projects WHERE owner_id = $1)`
	deleteOwnedProjectAccessesSQL = `DELETE FROM accesses WHERE project_id IN (SELECT id FROM projects WHERE owner_id = $1)`
	deleteOwnedProjectLocksSQL    = `DELETE FROM edit_locks WHERE project_id IN (SELECT id FROM projects WHERE owner_id = $1)`
	deleteOwnedProjectsSQL        = `DELETE FROM projects WHERE owner_id = $1`
	deleteUserAccessesSQL         = `DELETE FROM accesses WHERE user_id = $1`
	deleteUserSessionsSQL         = `DELETE FROM sessions WHERE user_id = $1`
)

// UserRepository implements ports.UserRepository on postgres.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, createUserSQL, user.Username, user.Email, user.PasswordHash))
	if err != nil {
		return nil, wrapError(err, "user")
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, getUserByUsernameSQL, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, getUserByEmailSQL, email)
}

func (r *UserRepository) getOne(ctx context.Context, sql string, arg any) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, sql, arg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapError(err, "user")
	}
	return u, nil
}

// GetByIDs returns public info for the given ids. Unknown ids are
// simply absent from the result.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.UserInfo, error) {
	rows, err := r.pool.Query(ctx, getUsersByIDsSQL, ids)
	if err != nil {
		return nil, wrapError(err, "user")
	}
	defer rows.Close()
	var infos []domain.UserInfo
	for rows.Next() {
		var info domain.UserInfo
		if err := rows.Scan(&info.ID, &info.Username); err != nil {
			return nil, wrapError(err, "user")
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "user")
	}
	return infos, nil
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, updateUserSQL, user.ID, user.Username, user.Email, user.PasswordHash))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("user")
		}
		return nil, wrapError(err, "user")
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, wrapError(err, "user")
	}
	defer tx.Rollback(ctx)

	// Locks held by the user's sessions on other owners' projects are
	// left in place to go stale, same as on logout.
	for _, sql := range []string{
		deleteOwnedProjectQueriesSQL,
		deleteOwnedProjectAccessesSQL,
		deleteOwnedProjectLocksSQL,
		deleteOwnedProjectsSQL,
		deleteUserAccessesSQL,
		deleteUserSessionsSQL,
	} {
		if _, err := tx.Exec(ctx, sql, id); err != nil {
			return nil, wrapError(err, "user")
		}
	}
	u, err := scanUser(tx.QueryRow(ctx, deleteUserSQL, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFound("user")
		}
		return nil, wrapError(err, "user")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrapError(err, "user")
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash); err != nil {
		return nil, err
	}
	return &u, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
