package domain

import "encoding/json"

// Query is a cached engine computation against a project. Result is nil
// until the query has been run. Outdated starts false and flips true
// whenever the owning project's components change; only a re-run that
// overwrites Result clears it.
type Query struct {
	ID        int64
	ProjectID int64
	String    string
	Result    json.RawMessage
	Outdated  bool
}
