package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

// Authenticator validates the bearer access token and confirms the
// session row still carries it: the session store is the revocation
// authority, so a structurally valid token whose session was replaced
// or deleted is refused. On success the caller's identity lands in the
// request context (see IdentityFromContext).
type Authenticator struct {
	codec    ports.TokenCodec
	sessions ports.SessionRepository
}

func NewAuthenticator(codec ports.TokenCodec, sessions ports.SessionRepository) *Authenticator {
	return &Authenticator{codec: codec, sessions: sessions}
}

func (m *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			writeAuthErr(w, "missing or invalid authorization")
			return
		}
		userID, err := m.codec.Validate(domain.TokenAccess, token)
		if err != nil {
			writeAuthErr(w, "invalid token")
			return
		}
		session, err := m.sessions.GetByToken(r.Context(), domain.TokenAccess, token)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error", "code": "internal"})
			return
		}
		if session == nil || session.UserID != userID {
			writeAuthErr(w, "no session found with given access token")
			return
		}
		ctx := WithIdentity(r.Context(), Identity{UserID: userID, SessionID: session.ID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the bearer token from the Authorization header,
// or "" when absent.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func writeAuthErr(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthenticated"})
}
