package domain

import "time"

// Connection is a directed "connects-to" edge between two registered users.
// Set semantics: no duplicates, no self-loops.
type Connection struct {
	OwnerID   string
	TargetID  string
	CreatedAt time.Time
}
