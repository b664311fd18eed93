package domain

import "encoding/json"

// Project owns a denormalized components payload that the engine
// consumes. (OwnerID, Name) is unique.
type Project struct {
	ID             int64
	Name           string
	OwnerID        int64
	ComponentsInfo json.RawMessage
}

// ProjectInfo is a project joined with the caller's role on it.
type ProjectInfo struct {
	ProjectID int64  `json:"project_id"`
	Name      string `json:"project_name"`
	OwnerID   int64  `json:"project_owner_id"`
	Role      Role   `json:"user_role_on_project"`
}
