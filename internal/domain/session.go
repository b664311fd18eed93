package domain

import "time"

// TokenKind distinguishes the two bearer token columns of a session.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Session is the single live token pair for one login. Refresh replaces
// the pair in place; the row id and owner never change.
type Session struct {
	ID           int64
	UserID       int64
	AccessToken  string
	RefreshToken string
	UpdatedAt    time.Time
}
