package access

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

// GrantInput names the grantee by exactly one of id, username or email.
type GrantInput struct {
	CallerID  int64
	ProjectID int64
	Role      domain.Role
	UserID    *int64
	Username  *string
	Email     *string
}

type Grant struct {
	authorizer *Authorizer
	accesses   ports.AccessRepository
	users      ports.UserRepository
}

func NewGrant(authorizer *Authorizer, accesses ports.AccessRepository, users ports.UserRepository) *Grant {
	return &Grant{authorizer: authorizer, accesses: accesses, users: users}
}

func (uc *Grant) Execute(ctx context.Context, input GrantInput) (*domain.Access, error) {
	if !input.Role.Valid() {
		return nil, errors.E(errors.KindInvalidArgument, "invalid role")
	}
	if _, err := uc.authorizer.Require(ctx, input.CallerID, input.ProjectID, domain.RoleEditor); err != nil {
		return nil, err
	}
	grantee, err := uc.resolveGrantee(ctx, input)
	if err != nil {
		return nil, err
	}
	return uc.accesses.Create(ctx, domain.Access{
		Role:      input.Role,
		UserID:    grantee.ID,
		ProjectID: input.ProjectID,
	})
}

func (uc *Grant) resolveGrantee(ctx context.Context, input GrantInput) (*domain.User, error) {
	var (
		grantee *domain.User
		err     error
	)
	switch {
	case input.UserID != nil:
		grantee, err = uc.users.GetByID(ctx, *input.UserID)
	case input.Username != nil:
		grantee, err = uc.users.GetByUsername(ctx, *input.Username)
	case input.Email != nil:
		grantee, err = uc.users.GetByEmail(ctx, *input.Email)
	default:
		return nil, errors.E(errors.KindInvalidArgument, "provide the user's id, username or email")
	}
	if err != nil {
		return nil, err
	}
	if grantee == nil {
		return nil, errors.E(errors.KindNotFound, "no user found to grant access to")
	}
	return grantee, nil
}
