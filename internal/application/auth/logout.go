package auth

import (
	"context"
	stderrors "errors"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type Logout struct {
	sessions ports.SessionRepository
	codec    ports.TokenCodec
}

func NewLogout(sessions ports.SessionRepository, codec ports.TokenCodec) *Logout {
	return &Logout{sessions: sessions, codec: codec}
}

// Execute deletes the session holding accessToken and returns the owning
// user id. An expired access token is still accepted for cleanup: the
// session is deleted and the caller gets the authentication error. A
// token whose session is already gone is treated the same as an invalid
// token, which makes logout idempotent from the client's point of view.
func (uc *Logout) Execute(ctx context.Context, accessToken string) (int64, error) {
	if accessToken == "" {
		return 0, errors.ErrNoToken
	}

	if _, err := uc.codec.Validate(domain.TokenAccess, accessToken); err != nil {
		if stderrors.Is(err, ports.ErrTokenExpired) {
			_, _ = uc.sessions.DeleteByToken(ctx, domain.TokenAccess, accessToken)
			return 0, errors.ErrExpiredToken
		}
		return 0, errors.ErrInvalidToken
	}

	s, err := uc.sessions.DeleteByToken(ctx, domain.TokenAccess, accessToken)
	if err != nil {
		if errors.KindOf(err) == errors.KindNotFound {
			return 0, errors.ErrSessionNotFound
		}
		return 0, err
	}
	return s.UserID, nil
}
