package domain

// User is an account in the directory. PasswordHash is the Argon2id
// encoding, never the plaintext.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
}

// UserInfo is the subset of User exposed to other users.
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
