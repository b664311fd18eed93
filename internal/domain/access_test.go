package domain

import "testing"

func TestRoleOrdering(t *testing.T) {
	cases := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleReader, RoleReader, true},
		{RoleReader, RoleCommenter, false},
		{RoleReader, RoleEditor, false},
		{RoleCommenter, RoleReader, true},
		{RoleCommenter, RoleCommenter, true},
		{RoleCommenter, RoleEditor, false},
		{RoleEditor, RoleReader, true},
		{RoleEditor, RoleEditor, true},
	}
	for _, c := range cases {
		if got := c.role.AtLeast(c.min); got != c.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", c.role, c.min, got, c.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleEditor.Valid() {
		t.Error("Editor should be valid")
	}
	if Role("Admin").Valid() {
		t.Error("unknown role should be invalid")
	}
	if Role("").Valid() {
		t.Error("empty role should be invalid")
	}
}
