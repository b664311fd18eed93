package project

import (
	"context"
	"time"

	"github.com/dagbjork/verimod/internal/application/access"
	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type GetInput struct {
	CallerID  int64
	SessionID int64
	ProjectID int64
}

// GetOutput is the project with its cached queries and whether another
// session currently holds the edit lock.
type GetOutput struct {
	Project *domain.Project
	Queries []domain.Query
	InUse   bool
}

type Get struct {
	authorizer *access.Authorizer
	projects   ports.ProjectRepository
	queries    ports.QueryRepository
	locks      ports.EditLockRepository
	now        func() time.Time
}

func NewGet(authorizer *access.Authorizer, projects ports.ProjectRepository, queries ports.QueryRepository, locks ports.EditLockRepository) *Get {
	return &Get{
		authorizer: authorizer,
		projects:   projects,
		queries:    queries,
		locks:      locks,
		now:        time.Now,
	}
}

// Execute returns the project for any member. When the edit lock has
// gone stale and the caller is an Editor, their session claims it.
func (uc *Get) Execute(ctx context.Context, input GetInput) (*GetOutput, error) {
	acc, err := uc.authorizer.Require(ctx, input.CallerID, input.ProjectID, domain.RoleReader)
	if err != nil {
		return nil, err
	}
	project, err := uc.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.E(errors.KindNotFound, "no project found with given id")
	}

	lock, err := uc.locks.Get(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	// A missing row counts as stale: the holder's session is gone and
	// the next Editor claims the lock fresh.
	inUse := lock != nil && lock.Live(uc.now())
	if !inUse && acc.Role.AtLeast(domain.RoleEditor) {
		if _, err := uc.locks.Update(ctx, domain.EditLock{
			ProjectID:      input.ProjectID,
			SessionID:      input.SessionID,
			LatestActivity: uc.now(),
		}); err != nil {
			return nil, err
		}
	}

	queries, err := uc.queries.GetAllByProjectID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Project: project, Queries: queries, InUse: inUse}, nil
}
