package user

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type Register struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewRegister(users ports.UserRepository, hasher ports.PasswordHasher) *Register {
	return &Register{users: users, hasher: hasher}
}

// Execute creates a user. Username and email collisions come back as
// already-exists errors with a field-specific message from the
// repository boundary.
func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if !validUsername(input.Username) {
		return nil, errors.E(errors.KindInvalidArgument, "invalid username")
	}
	if !validEmail(input.Email) {
		return nil, errors.E(errors.KindInvalidArgument, "invalid email")
	}
	digest, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "failed to hash password", err)
	}
	return uc.users.Create(ctx, domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: digest,
	})
}
