package access

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type UpdateInput struct {
	CallerID int64
	AccessID int64
	Role     domain.Role
}

type Update struct {
	authorizer *Authorizer
	accesses   ports.AccessRepository
	projects   ports.ProjectRepository
}

func NewUpdate(authorizer *Authorizer, accesses ports.AccessRepository, projects ports.ProjectRepository) *Update {
	return &Update{authorizer: authorizer, accesses: accesses, projects: projects}
}

// Execute changes the role on an existing access. The project owner's
// own access is immutable; it stays Editor for the project's lifetime.
func (uc *Update) Execute(ctx context.Context, input UpdateInput) (*domain.Access, error) {
	if !input.Role.Valid() {
		return nil, errors.E(errors.KindInvalidArgument, "invalid role")
	}
	target, err := uc.accesses.GetByID(ctx, input.AccessID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.E(errors.KindNotFound, "no access found with given id")
	}
	if _, err := uc.authorizer.Require(ctx, input.CallerID, target.ProjectID, domain.RoleEditor); err != nil {
		return nil, err
	}
	if err := guardOwner(ctx, uc.projects, target); err != nil {
		return nil, err
	}
	return uc.accesses.UpdateRole(ctx, target.ID, input.Role)
}

// guardOwner rejects changes to the access held by the project's owner.
func guardOwner(ctx context.Context, projects ports.ProjectRepository, target *domain.Access) error {
	project, err := projects.GetByID(ctx, target.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return errors.E(errors.KindNotFound, "no project found with given id")
	}
	if project.OwnerID == target.UserID {
		return errors.E(errors.KindPermissionDenied, "the project owner's access cannot be changed")
	}
	return nil
}
