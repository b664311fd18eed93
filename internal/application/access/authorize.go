package access

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

// Authorizer answers "does this user hold at least this role on this
// project". Every project-scoped use case funnels through it, so a user
// without any access row gets the same answer as one with a role that
// is too low.
type Authorizer struct {
	accesses ports.AccessRepository
}

func NewAuthorizer(accesses ports.AccessRepository) *Authorizer {
	return &Authorizer{accesses: accesses}
}

// Require returns the caller's access row when its role grants at least
// min, and a permission-denied error otherwise.
func (a *Authorizer) Require(ctx context.Context, userID, projectID int64, min domain.Role) (*domain.Access, error) {
	acc, err := a.accesses.GetByUserAndProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if acc == nil || !acc.Role.AtLeast(min) {
		return nil, errors.ErrNoAccess
	}
	return acc, nil
}
