// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role is the capability level of an account.
type Role string

const (
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAuthor || r == RoleAdmin
}

// Account is a registered user. PasswordHash and SessionTokens never leave the
// server: they are excluded from JSON.
type Account struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	SessionTokens []string  `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AccountWithPosts is the admin view of an account: the account plus the
// posts it authored.
type AccountWithPosts struct {
	*Account
	Blogs []*Post `json:"blogs"`
}

// Profile is the self-service view returned to an authenticated account.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
