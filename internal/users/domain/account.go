package domain

import "time"

// InvitationAccount bounds how many invitations a user may send. Every user
// owns exactly one, created in the same transaction as the user itself.
//
// OriginalCount is the historical grant and only ever grows (referral
// bonuses raise both counters by the same amount). CurrentCount is what is
// left to spend and never goes below zero.
type InvitationAccount struct {
	UserID        string
	OriginalCount int
	CurrentCount  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
