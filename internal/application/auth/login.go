package auth

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

// LoginInput carries credentials. Exactly one of Username or Email must
// be set; supplying neither or both is a caller error, not an
// authentication failure.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Login struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	hasher   ports.PasswordHasher
	codec    ports.TokenCodec
}

func NewLogin(users ports.UserRepository, sessions ports.SessionRepository, hasher ports.PasswordHasher, codec ports.TokenCodec) *Login {
	return &Login{users: users, sessions: sessions, hasher: hasher, codec: codec}
}

// Execute verifies the credentials and creates a fresh session. An
// unknown user and a wrong password surface the same error, so callers
// cannot probe which usernames exist.
func (uc *Login) Execute(ctx context.Context, input LoginInput) (*TokenPair, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case input.Username != "" && input.Email != "":
		return nil, errors.E(errors.KindInvalidArgument, "supply either username or email, not both")
	case input.Username != "":
		user, err = uc.users.GetByUsername(ctx, input.Username)
	case input.Email != "":
		user, err = uc.users.GetByEmail(ctx, input.Email)
	default:
		return nil, errors.E(errors.KindInvalidArgument, "no username or email provided")
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrWrongCredentials
	}

	ok, err := uc.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "failed to verify password", err)
	}
	if !ok {
		return nil, errors.ErrWrongCredentials
	}

	access, err := uc.codec.Issue(domain.TokenAccess, user.ID)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "failed to issue access token", err)
	}
	refresh, err := uc.codec.Issue(domain.TokenRefresh, user.ID)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "failed to issue refresh token", err)
	}
	if _, err := uc.sessions.Create(ctx, user.ID, access, refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
