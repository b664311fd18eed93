package project

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

// List returns every project the caller has any access to, joined with
// their role on it.
type List struct {
	projects ports.ProjectRepository
}

func NewList(projects ports.ProjectRepository) *List {
	return &List{projects: projects}
}

func (uc *List) Execute(ctx context.Context, callerID int64) ([]domain.ProjectInfo, error) {
	return uc.projects.ListInfoByUserID(ctx, callerID)
}
