package domain

import "time"

// Role classifies a registered user for access control decisions.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           string
	Email        string // unique, lowercased
	FirstName    string
	LastName     string
	PasswordHash string // argon2 encoded; empty until the user sets one
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
