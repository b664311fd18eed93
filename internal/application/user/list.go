package user

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

// List resolves public info for a set of user ids. Ids without a user
// are silently absent from the result.
type List struct {
	users ports.UserRepository
}

func NewList(users ports.UserRepository) *List {
	return &List{users: users}
}

func (uc *List) Execute(ctx context.Context, ids []int64) ([]domain.UserInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return uc.users.GetByIDs(ctx, ids)
}
