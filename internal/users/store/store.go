package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/crewhub/internal/users/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable, and a WithTx helper for multi-entity writes that must
// be atomic (invite = debit + pending insert; completion = user insert +
// credit + pending delete).
type Store interface {
	Users() Users
	Accounts() Accounts
	Pending() Pending
	Connections() Connections
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by lowercased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// DeleteUser cascades to invitation_accounts, connections and
	// session_tokens per schema. Pending registrations referencing the user
	// as inviter are left untouched (weak reference).
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Accounts interface {
	// GetAccount returns a user's invitation account.
	GetAccount(ctx context.Context, userID string) (domain.InvitationAccount, error)

	// CreateAccount inserts the account alongside its owning user.
	CreateAccount(ctx context.Context, a domain.InvitationAccount) error

	// Debit atomically decrements current_count by one. Returns false
	// without error when the account is missing or already at zero, so
	// concurrent debits of a count-of-one account yield exactly one true.
	Debit(ctx context.Context, userID string) (bool, error)

	// Credit raises current_count AND original_count by amount (a referral
	// bonus is a permanent quota increase, not a refund). Creates the
	// account as (amount, amount) when the user has none yet.
	Credit(ctx context.Context, userID string, amount int) error
}

type Pending interface {
	// CreatePending inserts a pending registration. Returns
	// ErrAlreadyExists when the email or login token is already present.
	CreatePending(ctx context.Context, p domain.PendingRegistration) error

	// GetPendingByToken looks up a pending registration by its public
	// login token.
	GetPendingByToken(ctx context.Context, loginToken string) (domain.PendingRegistration, error)

	// GetPendingByEmail looks up a pending registration by invitee email.
	GetPendingByEmail(ctx context.Context, email string) (domain.PendingRegistration, error)

	// DeletePending removes a consumed pending registration.
	DeletePending(ctx context.Context, id string) error
}

type Connections interface {
	// AddConnection inserts the directed edge (ownerID -> targetID).
	// Adding an existing edge is a no-op.
	AddConnection(ctx context.Context, ownerID, targetID string) error

	// ListConnections returns the users ownerID connects to.
	ListConnections(ctx context.Context, ownerID string) ([]domain.User, error)
}

type Sessions interface {
	// CreateSessionToken stores a new session token record.
	CreateSessionToken(ctx context.Context, t domain.SessionToken) error

	// GetSessionTokenByHash returns a not-expired token by its fingerprint.
	GetSessionTokenByHash(ctx context.Context, hash string) (domain.SessionToken, error)

	// DeleteExpiredSessionTokens is housekeeping.
	DeleteExpiredSessionTokens(ctx context.Context) error
}
