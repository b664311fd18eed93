package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dagbjork/verimod/internal/application/apptest"
	"github.com/dagbjork/verimod/internal/domain"
	infraauth "github.com/dagbjork/verimod/internal/infrastructure/auth"
)

func newGate(t *testing.T) (*apptest.Fixture, *infraauth.Codec, http.Handler, *Identity) {
	t.Helper()
	fx := apptest.New()
	codec, err := infraauth.NewCodec(infraauth.CodecConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
	})
	if err != nil {
		t.Fatal(err)
	}
	var seen Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id == nil {
			t.Error("identity missing inside the gate")
			return
		}
		seen = *id
		w.WriteHeader(http.StatusOK)
	})
	return fx, codec, NewAuthenticator(codec, fx.Sessions).Handler(next), &seen
}

func request(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/projects/", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestGateAcceptsLiveSession(t *testing.T) {
	fx, codec, gate, seen := newGate(t)
	ctx := context.Background()

	access, err := codec.Issue(domain.TokenAccess, 7)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := fx.Sessions.Create(ctx, 7, access, "refresh")
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	gate.ServeHTTP(w, request(access))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if seen.UserID != 7 || seen.SessionID != sess.ID {
		t.Errorf("identity = %+v", seen)
	}
}

func TestGateRejectsMissingAndGarbageTokens(t *testing.T) {
	_, _, gate, _ := newGate(t)

	for name, token := range map[string]string{
		"no header": "",
		"garbage":   "not-a-token",
	} {
		w := httptest.NewRecorder()
		gate.ServeHTTP(w, request(token))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, w.Code)
		}
	}
}

func TestGateRejectsRevokedSession(t *testing.T) {
	fx, codec, gate, _ := newGate(t)
	ctx := context.Background()

	access, err := codec.Issue(domain.TokenAccess, 7)
	if err != nil {
		t.Fatal(err)
	}
	// Structurally valid token, but its session was replaced: the store
	// is the revocation authority.
	if _, err := fx.Sessions.Create(ctx, 7, access, "refresh"); err != nil {
		t.Fatal(err)
	}
	if _, err := fx.Sessions.Replace(ctx, "refresh", "new-access", "new-refresh"); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	gate.ServeHTTP(w, request(access))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 after rotation", w.Code)
	}
}

func TestGateRejectsRefreshTokenOnAccessRoutes(t *testing.T) {
	fx, codec, gate, _ := newGate(t)
	ctx := context.Background()

	refresh, err := codec.Issue(domain.TokenRefresh, 7)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.Sessions.Create(ctx, 7, "access", refresh); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	gate.ServeHTTP(w, request(refresh))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for refresh token", w.Code)
	}
}
