package domain

import "time"

// SessionToken backs the token credential scheme. The raw token is a signed
// JWT handed out at login; only its fingerprint is stored so a database leak
// exposes nothing usable.
type SessionToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
