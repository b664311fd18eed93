package middleware

import "context"

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the caller resolved by the authentication gate: the user
// behind the access token and the session row carrying it.
type Identity struct {
	UserID    int64
	SessionID int64
}

// WithIdentity injects the caller's identity into the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the caller's identity, or nil outside the
// authentication gate.
func IdentityFromContext(ctx context.Context) *Identity {
	v := ctx.Value(identityContextKey)
	if v == nil {
		return nil
	}
	id, _ := v.(Identity)
	return &id
}
