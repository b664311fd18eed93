package user

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

// UpdateInput carries the caller's id (taken from the authenticated
// token, never the request body) and the fields to change. Nil fields
// keep their current value.
type UpdateInput struct {
	UserID   int64
	Username *string
	Email    *string
	Password *string
}

type Update struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewUpdate(users ports.UserRepository, hasher ports.PasswordHasher) *Update {
	return &Update{users: users, hasher: hasher}
}

func (uc *Update) Execute(ctx context.Context, input UpdateInput) (*domain.User, error) {
	current, err := uc.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.E(errors.KindNotFound, "no user found with given id")
	}

	next := *current
	if input.Username != nil {
		if !validUsername(*input.Username) {
			return nil, errors.E(errors.KindInvalidArgument, "invalid username")
		}
		next.Username = *input.Username
	}
	if input.Email != nil {
		if !validEmail(*input.Email) {
			return nil, errors.E(errors.KindInvalidArgument, "invalid email")
		}
		next.Email = *input.Email
	}
	if input.Password != nil {
		digest, err := uc.hasher.Hash(*input.Password)
		if err != nil {
			return nil, errors.Wrap(errors.KindInternal, "failed to hash password", err)
		}
		next.PasswordHash = digest
	}
	return uc.users.Update(ctx, next)
}
