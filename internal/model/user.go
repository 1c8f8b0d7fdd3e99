package model

import "time"

// User represents an account in the system. Username and Phone are globally
// unique; Phone is stored in its normalized digit form.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a stored session row binding an opaque session id to an account.
// The row existing is what makes a token valid; deleting it revokes the token.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
