package project

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dagbjork/verimod/internal/application/access"
	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

// UpdateInput carries optional fields; nil keeps the current value.
// Changing ComponentsInfo marks every query of the project outdated in
// the same transaction as the project write.
type UpdateInput struct {
	CallerID       int64
	SessionID      int64
	ProjectID      int64
	Name           *string
	ComponentsInfo json.RawMessage
	OwnerID        *int64
}

type Update struct {
	authorizer *access.Authorizer
	projects   ports.ProjectRepository
	locks      ports.EditLockRepository
	now        func() time.Time
}

func NewUpdate(authorizer *access.Authorizer, projects ports.ProjectRepository, locks ports.EditLockRepository) *Update {
	return &Update{
		authorizer: authorizer,
		projects:   projects,
		locks:      locks,
		now:        time.Now,
	}
}

func (uc *Update) Execute(ctx context.Context, input UpdateInput) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.E(errors.KindNotFound, "no project found with given id")
	}
	if _, err := uc.authorizer.Require(ctx, input.CallerID, input.ProjectID, domain.RoleEditor); err != nil {
		return nil, err
	}
	if err := uc.claimLock(ctx, input.ProjectID, input.SessionID); err != nil {
		return nil, err
	}

	next := *project
	if input.Name != nil {
		next.Name = *input.Name
	}
	if input.ComponentsInfo != nil {
		next.ComponentsInfo = input.ComponentsInfo
	}
	if input.OwnerID != nil {
		if project.OwnerID != input.CallerID {
			return nil, errors.E(errors.KindPermissionDenied, "only the owner can transfer a project")
		}
		next.OwnerID = *input.OwnerID
	}
	return uc.projects.Update(ctx, next, input.ComponentsInfo != nil)
}

// claimLock takes the edit lock for the caller's session, refusing when
// a different session still holds it fresh.
func (uc *Update) claimLock(ctx context.Context, projectID, sessionID int64) error {
	lock, err := uc.locks.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if lock != nil && lock.Live(uc.now()) && lock.SessionID != sessionID {
		return errors.E(errors.KindFailedPrecondition, "project is currently in use by another session")
	}
	_, err = uc.locks.Update(ctx, domain.EditLock{
		ProjectID:      projectID,
		SessionID:      sessionID,
		LatestActivity: uc.now(),
	})
	return err
}
