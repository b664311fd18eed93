package ports

import (
	"context"
	"time"

	"github.com/dagbjork/verimod/internal/domain"
)

// Lookups return (nil, nil) when no row matches; Delete methods return
// the deleted row so callers can react to what was removed.

// UserRepository defines persistence for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.UserInfo, error)
	Update(ctx context.Context, user domain.User) (*domain.User, error)
	// Delete removes the user and everything hanging off it (sessions,
	// accesses, owned projects and their dependents) in one transaction.
	Delete(ctx context.Context, id int64) (*domain.User, error)
}

// SessionRepository defines persistence for sessions. Replace and
// DeleteByToken fold their lookup into the write so two concurrent
// rotations of the same refresh token cannot both win.
type SessionRepository interface {
	Create(ctx context.Context, userID int64, accessToken, refreshToken string) (*domain.Session, error)
	GetByToken(ctx context.Context, kind domain.TokenKind, token string) (*domain.Session, error)
	// Replace swaps both token columns of the session currently holding
	// refreshToken. Exactly one concurrent caller observes the row; the
	// rest get a not-found error.
	Replace(ctx context.Context, refreshToken, newAccessToken, newRefreshToken string) (*domain.Session, error)
	DeleteByToken(ctx context.Context, kind domain.TokenKind, token string) (*domain.Session, error)
	// DeleteStale removes sessions not refreshed since the cutoff.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// ProjectRepository defines persistence for projects.
type ProjectRepository interface {
	// Create inserts the project together with the owner's Editor access
	// and the project's edit lock, all in one transaction.
	Create(ctx context.Context, project domain.Project, sessionID int64) (*domain.Project, error)
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]domain.ProjectInfo, error)
	// Update writes the project and, when invalidate is set, marks every
	// query of the project outdated in the same transaction.
	Update(ctx context.Context, project domain.Project, invalidate bool) (*domain.Project, error)
	// Delete removes the project with its queries, accesses and edit
	// lock in one transaction.
	Delete(ctx context.Context, id int64) (*domain.Project, error)
}

// AccessRepository defines persistence for role assignments.
type AccessRepository interface {
	Create(ctx context.Context, access domain.Access) (*domain.Access, error)
	GetByID(ctx context.Context, id int64) (*domain.Access, error)
	GetByUserAndProject(ctx context.Context, userID, projectID int64) (*domain.Access, error)
	ListByProject(ctx context.Context, projectID int64) ([]domain.AccessInfo, error)
	// UpdateRole changes the role only; user and project are immutable.
	UpdateRole(ctx context.Context, id int64, role domain.Role) (*domain.Access, error)
	Delete(ctx context.Context, id int64) (*domain.Access, error)
}

// QueryRepository defines persistence for cached engine queries.
type QueryRepository interface {
	Create(ctx context.Context, query domain.Query) (*domain.Query, error)
	GetByID(ctx context.Context, id int64) (*domain.Query, error)
	GetAllByProjectID(ctx context.Context, projectID int64) ([]domain.Query, error)
	Update(ctx context.Context, query domain.Query) (*domain.Query, error)
	Delete(ctx context.Context, id int64) (*domain.Query, error)
}

// EditLockRepository defines persistence for project edit locks. Get
// returns nil for a project without a lock row; Update claims the lock
// for a session, creating the row when it is missing.
type EditLockRepository interface {
	Get(ctx context.Context, projectID int64) (*domain.EditLock, error)
	Update(ctx context.Context, lock domain.EditLock) (*domain.EditLock, error)
}
