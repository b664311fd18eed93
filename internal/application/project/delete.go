package project

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

// Delete removes a project with its queries, accesses and edit lock.
// Owner only; an Editor who is not the owner is refused.
type Delete struct {
	projects ports.ProjectRepository
}

func NewDelete(projects ports.ProjectRepository) *Delete {
	return &Delete{projects: projects}
}

func (uc *Delete) Execute(ctx context.Context, callerID, projectID int64) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.E(errors.KindNotFound, "no project found with given id")
	}
	if project.OwnerID != callerID {
		return nil, errors.E(errors.KindPermissionDenied, "only the owner can delete a project")
	}
	return uc.projects.Delete(ctx, projectID)
}
