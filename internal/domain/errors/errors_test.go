package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := E(KindNotFound, "no project found with given id")
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf = %v, want KindNotFound", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("foreign errors should default to KindInternal")
	}
}

func TestSentinelMatchesAfterWrapping(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", ErrWrongCredentials)
	if !errors.Is(wrapped, ErrWrongCredentials) {
		t.Error("wrapped sentinel should still match errors.Is")
	}
}

func TestMessageOfHidesForeignErrors(t *testing.T) {
	if MessageOf(errors.New("pq: duplicate key")) != "internal error" {
		t.Error("foreign error message should not leak")
	}
	if MessageOf(ErrNoAccess) != "user does not have access to project" {
		t.Errorf("MessageOf = %q", MessageOf(ErrNoAccess))
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "failed to query database", cause)
	if !errors.Is(err, cause) {
		t.Error("Wrap should keep the cause reachable via errors.Is")
	}
	if KindOf(err) != KindInternal {
		t.Errorf("KindOf = %v, want KindInternal", KindOf(err))
	}
}
