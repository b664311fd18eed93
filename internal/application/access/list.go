package access

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

// List returns every access on a project, with usernames resolved. Any
// member may look, regardless of role.
type List struct {
	authorizer *Authorizer
	accesses   ports.AccessRepository
}

func NewList(authorizer *Authorizer, accesses ports.AccessRepository) *List {
	return &List{authorizer: authorizer, accesses: accesses}
}

func (uc *List) Execute(ctx context.Context, callerID, projectID int64) ([]domain.AccessInfo, error) {
	if _, err := uc.authorizer.Require(ctx, callerID, projectID, domain.RoleReader); err != nil {
		return nil, err
	}
	return uc.accesses.ListByProject(ctx, projectID)
}
