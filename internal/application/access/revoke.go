package access

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type Revoke struct {
	authorizer *Authorizer
	accesses   ports.AccessRepository
	projects   ports.ProjectRepository
}

func NewRevoke(authorizer *Authorizer, accesses ports.AccessRepository, projects ports.ProjectRepository) *Revoke {
	return &Revoke{authorizer: authorizer, accesses: accesses, projects: projects}
}

// Execute removes an access row. The owner's access can only go away
// with the project itself.
func (uc *Revoke) Execute(ctx context.Context, callerID, accessID int64) (*domain.Access, error) {
	target, err := uc.accesses.GetByID(ctx, accessID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.E(errors.KindNotFound, "no access found with given id")
	}
	if _, err := uc.authorizer.Require(ctx, callerID, target.ProjectID, domain.RoleEditor); err != nil {
		return nil, err
	}
	if err := guardOwner(ctx, uc.projects, target); err != nil {
		return nil, err
	}
	return uc.accesses.Delete(ctx, target.ID)
}
