package domain

// Role is a user's authorization level on a project.
type Role string

const (
	RoleReader    Role = "Reader"
	RoleCommenter Role = "Commenter"
	RoleEditor    Role = "Editor"
)

var roleRank = map[Role]int{
	RoleReader:    1,
	RoleCommenter: 2,
	RoleEditor:    3,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants,
// using the total order Reader < Commenter < Editor.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// Access assigns one role to one user on one project.
// (UserID, ProjectID) is unique.
type Access struct {
	ID        int64
	Role      Role
	UserID    int64
	ProjectID int64
}

// AccessInfo is an access row joined with the username, as listed to
// other members of the project.
type AccessInfo struct {
	ID       int64  `json:"id"`
	Role     Role   `json:"role"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
