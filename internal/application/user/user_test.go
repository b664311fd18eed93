package user

import (
	"context"
	"testing"

	"github.com/dagbjork/verimod/internal/application/apptest"
	"github.com/dagbjork/verimod/internal/domain/errors"
	"github.com/dagbjork/verimod/internal/infrastructure/security"
)

func TestRegisterValidation(t *testing.T) {
	fx := apptest.New()
	uc := NewRegister(fx.Users, security.NewHasher(security.DefaultParams()))
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"username too short", RegisterInput{Username: "ab", Email: "a@b.com", Password: "pw"}},
		{"username with spaces", RegisterInput{Username: "a b c", Email: "a@b.com", Password: "pw"}},
		{"username with symbols", RegisterInput{Username: "alice!", Email: "a@b.com", Password: "pw"}},
		{"email without at", RegisterInput{Username: "alice123", Email: "nope", Password: "pw"}},
		{"email without tld", RegisterInput{Username: "alice123", Email: "a@b", Password: "pw"}},
	}
	for _, c := range cases {
		if _, err := uc.Execute(ctx, c.input); errors.KindOf(err) != errors.KindInvalidArgument {
			t.Errorf("%s: err = %v, want invalid argument", c.name, err)
		}
	}

	u, err := uc.Execute(ctx, RegisterInput{Username: "alice123", Email: "a@b.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("valid registration: %v", err)
	}
	if u.PasswordHash == "Secret1" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	fx := apptest.New()
	uc := NewRegister(fx.Users, security.NewHasher(security.DefaultParams()))
	ctx := context.Background()

	if _, err := uc.Execute(ctx, RegisterInput{Username: "alice123", Email: "a@b.com", Password: "Secret1"}); err != nil {
		t.Fatal(err)
	}
	_, err := uc.Execute(ctx, RegisterInput{Username: "bob456", Email: "a@b.com", Password: "Other2"})
	if errors.KindOf(err) != errors.KindAlreadyExists {
		t.Errorf("duplicate email = %v, want already exists", err)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	fx := apptest.New()
	hasher := security.NewHasher(security.DefaultParams())
	ctx := context.Background()

	created, err := NewRegister(fx.Users, hasher).Execute(ctx, RegisterInput{
		Username: "alice123", Email: "a@b.com", Password: "Secret1",
	})
	if err != nil {
		t.Fatal(err)
	}

	uc := NewUpdate(fx.Users, hasher)
	newEmail := "alice@example.org"
	updated, err := uc.Execute(ctx, UpdateInput{UserID: created.ID, Email: &newEmail})
	if err != nil {
		t.Fatalf("update email: %v", err)
	}
	if updated.Email != newEmail {
		t.Errorf("email = %q, want %q", updated.Email, newEmail)
	}
	if updated.Username != "alice123" {
		t.Error("username should be untouched by an email-only update")
	}
	if updated.PasswordHash != created.PasswordHash {
		t.Error("password hash should be untouched by an email-only update")
	}

	newPassword := "Changed2"
	updated2, err := uc.Execute(ctx, UpdateInput{UserID: created.ID, Password: &newPassword})
	if err != nil {
		t.Fatal(err)
	}
	if updated2.PasswordHash == created.PasswordHash {
		t.Error("password update should change the stored hash")
	}
	ok, err := hasher.Verify(newPassword, updated2.PasswordHash)
	if err != nil || !ok {
		t.Errorf("new password should verify, ok=%v err=%v", ok, err)
	}

	bad := "no spaces allowed"
	if _, err := uc.Execute(ctx, UpdateInput{UserID: created.ID, Username: &bad}); errors.KindOf(err) != errors.KindInvalidArgument {
		t.Errorf("invalid username on update = %v, want invalid argument", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	fx := apptest.New()
	hasher := security.NewHasher(security.DefaultParams())
	ctx := context.Background()

	created, err := NewRegister(fx.Users, hasher).Execute(ctx, RegisterInput{
		Username: "alice123", Email: "a@b.com", Password: "Secret1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.Sessions.Create(ctx, created.ID, "acc", "ref"); err != nil {
		t.Fatal(err)
	}

	deleted, err := NewDelete(fx.Users).Execute(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Username != "alice123" {
		t.Error("delete should return the removed row")
	}
	if fx.Sessions.Count() != 0 {
		t.Error("deleting a user should delete their sessions")
	}
	if got, _ := fx.Users.GetByID(ctx, created.ID); got != nil {
		t.Error("user should be gone")
	}
}

func TestListByIDsSkipsUnknown(t *testing.T) {
	fx := apptest.New()
	hasher := security.NewHasher(security.DefaultParams())
	ctx := context.Background()

	a, err := NewRegister(fx.Users, hasher).Execute(ctx, RegisterInput{Username: "alice123", Email: "a@b.com", Password: "x1"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRegister(fx.Users, hasher).Execute(ctx, RegisterInput{Username: "bob456", Email: "b@b.com", Password: "x2"})
	if err != nil {
		t.Fatal(err)
	}

	infos, err := NewList(fx.Users).Execute(ctx, []int64{a.ID, b.ID, 9999})
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("infos = %d, want 2", len(infos))
	}
	for _, info := range infos {
		if info.Username == "" {
			t.Error("listed users should carry usernames")
		}
	}
}
