package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(CodecConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodecRequiresSecrets(t *testing.T) {
	if _, err := NewCodec(CodecConfig{AccessSecret: "only-one"}); err == nil {
		t.Error("missing refresh secret should fail")
	}
	if _, err := NewCodec(CodecConfig{RefreshSecret: "only-one"}); err == nil {
		t.Error("missing access secret should fail")
	}
}

func TestIssueValidateRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	for _, kind := range []domain.TokenKind{domain.TokenAccess, domain.TokenRefresh} {
		tok, err := c.Issue(kind, 42)
		if err != nil {
			t.Fatalf("Issue(%s): %v", kind, err)
		}
		uid, err := c.Validate(kind, tok)
		if err != nil {
			t.Fatalf("Validate(%s): %v", kind, err)
		}
		if uid != 42 {
			t.Errorf("Validate(%s) subject = %d, want 42", kind, uid)
		}
	}
}

func TestValidateRejectsWrongKind(t *testing.T) {
	c := newTestCodec(t)
	refresh, err := c.Issue(domain.TokenRefresh, 7)
	if err != nil {
		t.Fatal(err)
	}
	// Different secrets, so the cross-kind check fails at the signature.
	if _, err := c.Validate(domain.TokenAccess, refresh); !errors.Is(err, ports.ErrTokenMalformed) {
		t.Errorf("refresh token as access = %v, want ports.ErrTokenMalformed", err)
	}

	// With identical secrets the signature verifies and only the kind
	// tag differs; that must still never validate.
	same, err := NewCodec(CodecConfig{AccessSecret: "shared", RefreshSecret: "shared"})
	if err != nil {
		t.Fatal(err)
	}
	refresh, err = same.Issue(domain.TokenRefresh, 7)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := same.Validate(domain.TokenAccess, refresh); !errors.Is(err, ports.ErrTokenWrongKind) {
		t.Errorf("same-secret cross-kind = %v, want ports.ErrTokenWrongKind", err)
	}
}

func TestValidateDistinguishesExpiredFromMalformed(t *testing.T) {
	c := newTestCodec(t)
	past := time.Now().Add(-48 * time.Hour)
	c.now = func() time.Time { return past }
	tok, err := c.Issue(domain.TokenAccess, 9)
	if err != nil {
		t.Fatal(err)
	}
	c.now = time.Now
	if _, err := c.Validate(domain.TokenAccess, tok); !errors.Is(err, ports.ErrTokenExpired) {
		t.Errorf("expired token = %v, want ports.ErrTokenExpired", err)
	}
	if _, err := c.Validate(domain.TokenAccess, "not.a.token"); !errors.Is(err, ports.ErrTokenMalformed) {
		t.Errorf("garbage token = %v, want ports.ErrTokenMalformed", err)
	}
}

func TestExpiredWrongKindReportsWrongKind(t *testing.T) {
	same, err := NewCodec(CodecConfig{AccessSecret: "shared", RefreshSecret: "shared"})
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-365 * 24 * time.Hour)
	same.now = func() time.Time { return past }
	tok, err := same.Issue(domain.TokenAccess, 3)
	if err != nil {
		t.Fatal(err)
	}
	same.now = time.Now
	// Expired and of the wrong kind: wrong kind wins, no cleanup allowed.
	if _, err := same.Validate(domain.TokenRefresh, tok); !errors.Is(err, ports.ErrTokenWrongKind) {
		t.Errorf("expired wrong-kind token = %v, want ports.ErrTokenWrongKind", err)
	}
}

func TestValidateRejectsTamperedSubject(t *testing.T) {
	c := newTestCodec(t)
	tok, err := c.Issue(domain.TokenAccess, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Validate(domain.TokenAccess, tok+"x"); !errors.Is(err, ports.ErrTokenMalformed) {
		t.Errorf("tampered token = %v, want ports.ErrTokenMalformed", err)
	}
}
