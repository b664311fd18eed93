package auth

import (
	"context"
	stderrors "errors"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type Refresh struct {
	sessions ports.SessionRepository
	codec    ports.TokenCodec
}

func NewRefresh(sessions ports.SessionRepository, codec ports.TokenCodec) *Refresh {
	return &Refresh{sessions: sessions, codec: codec}
}

// Execute rotates the token pair of the session holding refreshToken.
// An expired token deletes its session before rejecting; a malformed or
// wrong-kind token rejects without touching storage. The session swap is
// a single atomic replace, so of two concurrent refreshes with the same
// token exactly one wins and the other sees the row already gone.
func (uc *Refresh) Execute(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, errors.ErrNoToken
	}

	uid, err := uc.codec.Validate(domain.TokenRefresh, refreshToken)
	if err != nil {
		if stderrors.Is(err, ports.ErrTokenExpired) {
			// Cleanup is best effort; its failure must not mask the
			// authentication error.
			_, _ = uc.sessions.DeleteByToken(ctx, domain.TokenRefresh, refreshToken)
			return nil, errors.ErrExpiredToken
		}
		return nil, errors.ErrInvalidToken
	}

	access, err := uc.codec.Issue(domain.TokenAccess, uid)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "failed to issue access token", err)
	}
	refresh, err := uc.codec.Issue(domain.TokenRefresh, uid)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "failed to issue refresh token", err)
	}

	if _, err := uc.sessions.Replace(ctx, refreshToken, access, refresh); err != nil {
		if errors.KindOf(err) == errors.KindNotFound {
			return nil, errors.ErrSessionNotFound
		}
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
