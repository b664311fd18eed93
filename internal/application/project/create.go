package project

import (
	"context"
	"encoding/json"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type CreateInput struct {
	CallerID       int64
	SessionID      int64
	Name           string
	ComponentsInfo json.RawMessage
}

// Create inserts a project. The creator becomes its owner with an
// Editor access, and the project's edit lock starts out held by the
// creating session; all of that lands in one storage transaction.
type Create struct {
	projects ports.ProjectRepository
}

func NewCreate(projects ports.ProjectRepository) *Create {
	return &Create{projects: projects}
}

func (uc *Create) Execute(ctx context.Context, input CreateInput) (*domain.Project, error) {
	if input.Name == "" {
		return nil, errors.E(errors.KindInvalidArgument, "no project name provided")
	}
	if input.ComponentsInfo == nil {
		return nil, errors.E(errors.KindInvalidArgument, "no components info provided")
	}
	return uc.projects.Create(ctx, domain.Project{
		Name:           input.Name,
		OwnerID:        input.CallerID,
		ComponentsInfo: input.ComponentsInfo,
	}, input.SessionID)
}
