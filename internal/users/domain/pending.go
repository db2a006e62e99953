package domain

import "time"

// PendingRegistration is an invitee that has not completed registration yet.
//
// LoginToken is the public identifier carried by the registration link.
// The secret key proving possession of the mailbox is only ever delivered
// by mail; we store its fingerprint. InviterID is a plain lookup key, not an
// ownership edge: the inviter may be deleted while this record lives on.
type PendingRegistration struct {
	ID            string
	Email         string // unique among pending entries and against users
	FirstName     string
	LastName      string
	LoginToken    string // unique, opaque
	SecretKeyHash string
	InviterID     string
	CreatedAt     time.Time
}
