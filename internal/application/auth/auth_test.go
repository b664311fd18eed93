package auth

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/dagbjork/verimod/internal/application/apptest"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
	infraauth "github.com/dagbjork/verimod/internal/infrastructure/auth"
	"github.com/dagbjork/verimod/internal/infrastructure/security"
)

type authFixture struct {
	*apptest.Fixture
	codec  *infraauth.Codec
	login  *Login
	fresh  *Refresh
	logout *Logout
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	fx := apptest.New()
	codec, err := infraauth.NewCodec(infraauth.CodecConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	hasher := security.NewHasher(security.DefaultParams())
	return &authFixture{
		Fixture: fx,
		codec:   codec,
		login:   NewLogin(fx.Users, fx.Sessions, hasher, codec),
		fresh:   NewRefresh(fx.Sessions, codec),
		logout:  NewLogout(fx.Sessions, codec),
	}
}

func (fx *authFixture) addUser(t *testing.T, username, email, password string) *domain.User {
	t.Helper()
	hasher := security.NewHasher(security.DefaultParams())
	digest, err := hasher.Hash(password)
	if err != nil {
		t.Fatal(err)
	}
	u, err := fx.Users.Create(context.Background(), domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
	})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestLoginByUsernameAndByEmail(t *testing.T) {
	fx := newAuthFixture(t)
	fx.addUser(t, "alice123", "a@b.com", "Secret1")
	ctx := context.Background()

	byName, err := fx.login.Execute(ctx, LoginInput{Username: "alice123", Password: "Secret1"})
	if err != nil {
		t.Fatalf("login by username: %v", err)
	}
	byMail, err := fx.login.Execute(ctx, LoginInput{Email: "a@b.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if byName.AccessToken == "" || byMail.RefreshToken == "" {
		t.Error("login should return a full token pair")
	}
	if fx.Sessions.Count() != 2 {
		t.Errorf("sessions = %d, want 2 (one per login)", fx.Sessions.Count())
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	fx := newAuthFixture(t)
	fx.addUser(t, "alice123", "a@b.com", "Secret1")
	ctx := context.Background()

	_, wrongPw := fx.login.Execute(ctx, LoginInput{Username: "alice123", Password: "nope"})
	_, noUser := fx.login.Execute(ctx, LoginInput{Username: "mallory", Password: "Secret1"})
	if !stderrors.Is(wrongPw, errors.ErrWrongCredentials) {
		t.Errorf("wrong password = %v, want ErrWrongCredentials", wrongPw)
	}
	if !stderrors.Is(noUser, errors.ErrWrongCredentials) {
		t.Errorf("unknown user = %v, want ErrWrongCredentials", noUser)
	}
	if wrongPw.Error() != noUser.Error() {
		t.Error("wrong password and unknown user must produce identical errors")
	}
	if fx.Sessions.Count() != 0 {
		t.Error("failed logins must not create sessions")
	}
}

func TestLoginRequiresExactlyOneIdentifier(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.login.Execute(ctx, LoginInput{Password: "Secret1"})
	if errors.KindOf(err) != errors.KindInvalidArgument {
		t.Errorf("no identifier = %v, want invalid argument", err)
	}
	_, err = fx.login.Execute(ctx, LoginInput{Username: "a", Email: "a@b.com", Password: "x"})
	if errors.KindOf(err) != errors.KindInvalidArgument {
		t.Errorf("both identifiers = %v, want invalid argument", err)
	}
}

func TestRefreshRotatesAndConsumesToken(t *testing.T) {
	fx := newAuthFixture(t)
	fx.addUser(t, "alice123", "a@b.com", "Secret1")
	ctx := context.Background()

	first, err := fx.login.Execute(ctx, LoginInput{Username: "alice123", Password: "Secret1"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := fx.fresh.Execute(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.AccessToken == first.AccessToken || second.RefreshToken == first.RefreshToken {
		t.Error("refresh must issue a different token pair")
	}
	if fx.Sessions.Count() != 1 {
		t.Errorf("sessions = %d, want 1 (replaced, not appended)", fx.Sessions.Count())
	}

	// The consumed refresh token must be unusable for a second rotation.
	if _, err := fx.fresh.Execute(ctx, first.RefreshToken); !stderrors.Is(err, errors.ErrSessionNotFound) {
		t.Errorf("reused refresh token = %v, want ErrSessionNotFound", err)
	}

	// The rotated pair keeps working.
	if _, err := fx.fresh.Execute(ctx, second.RefreshToken); err != nil {
		t.Errorf("rotated token should refresh again: %v", err)
	}
}

func TestRefreshRejectsGarbageAndWrongKind(t *testing.T) {
	fx := newAuthFixture(t)
	u := fx.addUser(t, "alice123", "a@b.com", "Secret1")
	ctx := context.Background()

	if _, err := fx.fresh.Execute(ctx, ""); !stderrors.Is(err, errors.ErrNoToken) {
		t.Errorf("empty token = %v, want ErrNoToken", err)
	}
	if _, err := fx.fresh.Execute(ctx, "garbage"); errors.KindOf(err) != errors.KindUnauthenticated {
		t.Errorf("garbage token = %v, want unauthenticated", err)
	}
	access, err := fx.codec.Issue(domain.TokenAccess, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.fresh.Execute(ctx, access); errors.KindOf(err) != errors.KindUnauthenticated {
		t.Errorf("access token presented as refresh = %v, want unauthenticated", err)
	}
}

func expiredCodec(t *testing.T) *infraauth.Codec {
	t.Helper()
	// One-nanosecond TTLs, so issued tokens are expired by first use.
	codec, err := infraauth.NewCodec(infraauth.CodecConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Nanosecond,
		RefreshTTL:    time.Nanosecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	return codec
}

func TestExpiredRefreshDeletesSession(t *testing.T) {
	fx := newAuthFixture(t)
	u := fx.addUser(t, "alice123", "a@b.com", "Secret1")
	ctx := context.Background()

	short := expiredCodec(t)
	refresh, err := short.Issue(domain.TokenRefresh, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	access, err := short.Issue(domain.TokenAccess, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.Sessions.Create(ctx, u.ID, access, refresh); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	uc := NewRefresh(fx.Sessions, short)
	if _, err := uc.Execute(ctx, refresh); !stderrors.Is(err, errors.ErrExpiredToken) {
		t.Fatalf("expired refresh = %v, want ErrExpiredToken", err)
	}
	if fx.Sessions.Count() != 0 {
		t.Error("expired refresh token should delete its session")
	}
}

func TestExpiredRefreshCleanupFailureDoesNotMaskError(t *testing.T) {
	fx := newAuthFixture(t)
	u := fx.addUser(t, "alice123", "a@b.com", "Secret1")
	ctx := context.Background()

	short := expiredCodec(t)
	refresh, err := short.Issue(domain.TokenRefresh, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	fx.Sessions.DeleteErr = stderrors.New("connection reset")
	uc := NewRefresh(fx.Sessions, short)
	if _, err := uc.Execute(ctx, refresh); !stderrors.Is(err, errors.ErrExpiredToken) {
		t.Errorf("cleanup failure must not mask the auth error, got %v", err)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	fx := newAuthFixture(t)
	u := fx.addUser(t, "alice123", "a@b.com", "Secret1")
	ctx := context.Background()

	pair, err := fx.login.Execute(ctx, LoginInput{Username: "alice123", Password: "Secret1"})
	if err != nil {
		t.Fatal(err)
	}
	uid, err := fx.logout.Execute(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if uid != u.ID {
		t.Errorf("logout returned user %d, want %d", uid, u.ID)
	}
	if fx.Sessions.Count() != 0 {
		t.Error("logout should delete the session")
	}

	// Second logout with the same token: session already gone.
	if _, err := fx.logout.Execute(ctx, pair.AccessToken); !stderrors.Is(err, errors.ErrSessionNotFound) {
		t.Errorf("repeat logout = %v, want ErrSessionNotFound", err)
	}
}

func TestLogoutWithExpiredAccessTokenStillCleansUp(t *testing.T) {
	fx := newAuthFixture(t)
	u := fx.addUser(t, "alice123", "a@b.com", "Secret1")
	ctx := context.Background()

	short := expiredCodec(t)
	access, err := short.Issue(domain.TokenAccess, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := short.Issue(domain.TokenRefresh, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.Sessions.Create(ctx, u.ID, access, refresh); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	uc := NewLogout(fx.Sessions, short)
	if _, err := uc.Execute(ctx, access); !stderrors.Is(err, errors.ErrExpiredToken) {
		t.Fatalf("expired access at logout = %v, want ErrExpiredToken", err)
	}
	if fx.Sessions.Count() != 0 {
		t.Error("logout with expired access token should still delete the session")
	}
}
