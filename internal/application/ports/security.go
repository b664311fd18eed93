package ports

import (
	"errors"

	"github.com/dagbjork/verimod/internal/domain"
)

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// Token validation outcomes. Codec implementations wrap these so
// callers can branch with errors.Is without knowing the codec.
var (
	ErrTokenMalformed = errors.New("token cannot be parsed or its signature is invalid")
	ErrTokenWrongKind = errors.New("token is valid but of the wrong kind")
	ErrTokenExpired   = errors.New("token is expired")
)

// TokenCodec signs and validates the two bearer token kinds with
// kind-specific secrets. Validate returns the subject user id, or one
// of the token errors above.
type TokenCodec interface {
	Issue(kind domain.TokenKind, userID int64) (string, error)
	Validate(kind domain.TokenKind, token string) (int64, error)
}
