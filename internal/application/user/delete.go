package user

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

// Delete removes the caller's own account. Sessions, accesses and owned
// projects go with it, in one storage transaction.
type Delete struct {
	users ports.UserRepository
}

func NewDelete(users ports.UserRepository) *Delete {
	return &Delete{users: users}
}

func (uc *Delete) Execute(ctx context.Context, userID int64) (*domain.User, error) {
	return uc.users.Delete(ctx, userID)
}
