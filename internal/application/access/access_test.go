package access

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/dagbjork/verimod/internal/application/apptest"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type accessFixture struct {
	fx         *apptest.Fixture
	authorizer *Authorizer
	owner      *domain.User
	member     *domain.User
	outsider   *domain.User
	project    *domain.Project
}

func newAccessFixture(t *testing.T) *accessFixture {
	t.Helper()
	fx := apptest.New()
	ctx := context.Background()

	addUser := func(username, email string) *domain.User {
		u, err := fx.Users.Create(ctx, domain.User{Username: username, Email: email, PasswordHash: "x"})
		if err != nil {
			t.Fatal(err)
		}
		return u
	}
	owner := addUser("owner", "owner@x.com")
	member := addUser("member", "member@x.com")
	outsider := addUser("outsider", "outsider@x.com")

	sess, err := fx.Sessions.Create(ctx, owner.ID, "acc", "ref")
	if err != nil {
		t.Fatal(err)
	}
	project, err := fx.Projects.Create(ctx, domain.Project{Name: "sys", OwnerID: owner.ID}, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	return &accessFixture{
		fx:         fx,
		authorizer: NewAuthorizer(fx.Accesses),
		owner:      owner,
		member:     member,
		outsider:   outsider,
		project:    project,
	}
}

func (f *accessFixture) grantMember(t *testing.T, role domain.Role) *domain.Access {
	t.Helper()
	acc, err := f.fx.Accesses.Create(context.Background(), domain.Access{
		Role: role, UserID: f.member.ID, ProjectID: f.project.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return acc
}

func TestRequireRoleOrder(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.grantMember(t, domain.RoleCommenter)

	if _, err := f.authorizer.Require(ctx, f.member.ID, f.project.ID, domain.RoleReader); err != nil {
		t.Errorf("commenter should satisfy reader: %v", err)
	}
	if _, err := f.authorizer.Require(ctx, f.member.ID, f.project.ID, domain.RoleCommenter); err != nil {
		t.Errorf("commenter should satisfy commenter: %v", err)
	}
	if _, err := f.authorizer.Require(ctx, f.member.ID, f.project.ID, domain.RoleEditor); !stderrors.Is(err, errors.ErrNoAccess) {
		t.Errorf("commenter asking for editor = %v, want no access", err)
	}
	if _, err := f.authorizer.Require(ctx, f.outsider.ID, f.project.ID, domain.RoleReader); !stderrors.Is(err, errors.ErrNoAccess) {
		t.Errorf("outsider = %v, want no access", err)
	}
}

func TestGrantByEachIdentifier(t *testing.T) {
	ctx := context.Background()
	id := func(f *accessFixture) GrantInput {
		return GrantInput{UserID: &f.member.ID}
	}
	username := func(f *accessFixture) GrantInput {
		u := "member"
		return GrantInput{Username: &u}
	}
	email := func(f *accessFixture) GrantInput {
		e := "member@x.com"
		return GrantInput{Email: &e}
	}
	for name, pick := range map[string]func(*accessFixture) GrantInput{
		"by id": id, "by username": username, "by email": email,
	} {
		f := newAccessFixture(t)
		uc := NewGrant(f.authorizer, f.fx.Accesses, f.fx.Users)
		input := pick(f)
		input.CallerID = f.owner.ID
		input.ProjectID = f.project.ID
		input.Role = domain.RoleReader
		acc, err := uc.Execute(ctx, input)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if acc.UserID != f.member.ID || acc.Role != domain.RoleReader {
			t.Errorf("%s: granted %+v", name, acc)
		}
	}
}

func TestGrantRequiresEditor(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.grantMember(t, domain.RoleCommenter)
	uc := NewGrant(f.authorizer, f.fx.Accesses, f.fx.Users)

	_, err := uc.Execute(ctx, GrantInput{
		CallerID:  f.member.ID,
		ProjectID: f.project.ID,
		Role:      domain.RoleReader,
		UserID:    &f.outsider.ID,
	})
	if !stderrors.Is(err, errors.ErrNoAccess) {
		t.Errorf("commenter granting = %v, want no access", err)
	}
}

func TestGrantRejectsBadInput(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	uc := NewGrant(f.authorizer, f.fx.Accesses, f.fx.Users)

	_, err := uc.Execute(ctx, GrantInput{
		CallerID: f.owner.ID, ProjectID: f.project.ID, Role: "Admin", UserID: &f.member.ID,
	})
	if errors.KindOf(err) != errors.KindInvalidArgument {
		t.Errorf("unknown role = %v, want invalid argument", err)
	}

	_, err = uc.Execute(ctx, GrantInput{
		CallerID: f.owner.ID, ProjectID: f.project.ID, Role: domain.RoleReader,
	})
	if errors.KindOf(err) != errors.KindInvalidArgument {
		t.Errorf("no identifier = %v, want invalid argument", err)
	}

	ghost := "nobody"
	_, err = uc.Execute(ctx, GrantInput{
		CallerID: f.owner.ID, ProjectID: f.project.ID, Role: domain.RoleReader, Username: &ghost,
	})
	if errors.KindOf(err) != errors.KindNotFound {
		t.Errorf("unknown grantee = %v, want not found", err)
	}
}

func TestGrantDuplicatePair(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.grantMember(t, domain.RoleReader)
	uc := NewGrant(f.authorizer, f.fx.Accesses, f.fx.Users)

	_, err := uc.Execute(ctx, GrantInput{
		CallerID: f.owner.ID, ProjectID: f.project.ID, Role: domain.RoleEditor, UserID: &f.member.ID,
	})
	if errors.KindOf(err) != errors.KindAlreadyExists {
		t.Errorf("second grant for same pair = %v, want already exists", err)
	}
}

func TestUpdateRole(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	acc := f.grantMember(t, domain.RoleReader)
	uc := NewUpdate(f.authorizer, f.fx.Accesses, f.fx.Projects)

	updated, err := uc.Execute(ctx, UpdateInput{CallerID: f.owner.ID, AccessID: acc.ID, Role: domain.RoleEditor})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Role != domain.RoleEditor {
		t.Errorf("role = %s, want Editor", updated.Role)
	}

	// The member is an Editor now, so they may demote themselves.
	if _, err := uc.Execute(ctx, UpdateInput{CallerID: f.member.ID, AccessID: acc.ID, Role: domain.RoleReader}); err != nil {
		t.Errorf("editor changing a non-owner access: %v", err)
	}
}

func TestOwnerAccessImmutable(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.grantMember(t, domain.RoleEditor)

	ownerAcc, err := f.fx.Accesses.GetByUserAndProject(ctx, f.owner.ID, f.project.ID)
	if err != nil || ownerAcc == nil {
		t.Fatalf("owner access: %v %v", ownerAcc, err)
	}

	update := NewUpdate(f.authorizer, f.fx.Accesses, f.fx.Projects)
	_, err = update.Execute(ctx, UpdateInput{CallerID: f.member.ID, AccessID: ownerAcc.ID, Role: domain.RoleReader})
	if errors.KindOf(err) != errors.KindPermissionDenied {
		t.Errorf("demoting the owner = %v, want permission denied", err)
	}

	revoke := NewRevoke(f.authorizer, f.fx.Accesses, f.fx.Projects)
	_, err = revoke.Execute(ctx, f.member.ID, ownerAcc.ID)
	if errors.KindOf(err) != errors.KindPermissionDenied {
		t.Errorf("revoking the owner = %v, want permission denied", err)
	}
}

func TestRevoke(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	acc := f.grantMember(t, domain.RoleReader)
	uc := NewRevoke(f.authorizer, f.fx.Accesses, f.fx.Projects)

	if _, err := uc.Execute(ctx, f.member.ID, acc.ID); !stderrors.Is(err, errors.ErrNoAccess) {
		t.Errorf("reader revoking = %v, want no access", err)
	}
	removed, err := uc.Execute(ctx, f.owner.ID, acc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed.ID != acc.ID {
		t.Error("revoke should return the removed row")
	}
	if _, err := uc.Execute(ctx, f.owner.ID, acc.ID); errors.KindOf(err) != errors.KindNotFound {
		t.Errorf("second revoke = %v, want not found", err)
	}
}

func TestListRequiresMembership(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.grantMember(t, domain.RoleReader)
	uc := NewList(f.authorizer, f.fx.Accesses)

	infos, err := uc.Execute(ctx, f.member.ID, f.project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("infos = %d, want owner and member", len(infos))
	}
	for _, info := range infos {
		if info.Username == "" {
			t.Error("list should join usernames")
		}
	}

	if _, err := uc.Execute(ctx, f.outsider.ID, f.project.ID); !stderrors.Is(err, errors.ErrNoAccess) {
		t.Errorf("outsider listing = %v, want no access", err)
	}
}
