package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/crewhub/internal/users/domain"
	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/pkg/idx"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func insertUser(t *testing.T, st *Store, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:    idx.New().String(),
		Email: email,
		Role:  domain.RoleUser,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("roundtrip", func(t *testing.T) {
		st := newStore(t)
		u := insertUser(t, st, "joe@example.com")

		byID, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, byID.Email)

		byEmail, err := st.Users().GetUserByEmail(ctx, "joe@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		st := newStore(t)
		insertUser(t, st, "joe@example.com")

		err := st.Users().CreateUser(ctx, domain.User{
			ID:    idx.New().String(),
			Email: "joe@example.com",
			Role:  domain.RoleUser,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("delete cascades to owned records", func(t *testing.T) {
		st := newStore(t)
		u := insertUser(t, st, "joe@example.com")
		other := insertUser(t, st, "bob@example.com")

		require.NoError(t, st.Accounts().CreateAccount(ctx, domain.InvitationAccount{
			UserID: u.ID, OriginalCount: 1, CurrentCount: 1,
		}))
		require.NoError(t, st.Connections().AddConnection(ctx, u.ID, other.ID))
		require.NoError(t, st.Sessions().CreateSessionToken(ctx, domain.SessionToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: "hash",
			ExpiresAt: time.Now().Add(time.Hour),
		}))

		require.NoError(t, st.Users().DeleteUser(ctx, u.ID))

		_, err := st.Accounts().GetAccount(ctx, u.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Sessions().GetSessionTokenByHash(ctx, "hash")
		require.ErrorIs(t, err, store.ErrNotFound)

		edges, err := st.Connections().ListConnections(ctx, u.ID)
		require.NoError(t, err)
		require.Empty(t, edges)
	})

	t.Run("delete unknown user", func(t *testing.T) {
		st := newStore(t)
		require.ErrorIs(t, st.Users().DeleteUser(ctx, "nope"), store.ErrNotFound)
	})

	t.Run("is empty", func(t *testing.T) {
		st := newStore(t)

		empty, err := st.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)

		insertUser(t, st, "joe@example.com")

		empty, err = st.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.False(t, empty)
	})
}

func TestAccountsRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("debit stops at zero", func(t *testing.T) {
		st := newStore(t)
		u := insertUser(t, st, "joe@example.com")
		require.NoError(t, st.Accounts().CreateAccount(ctx, domain.InvitationAccount{
			UserID: u.ID, OriginalCount: 1, CurrentCount: 1,
		}))

		ok, err := st.Accounts().Debit(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = st.Accounts().Debit(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, ok)

		a, err := st.Accounts().GetAccount(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 1, a.OriginalCount)
		require.Equal(t, 0, a.CurrentCount)
	})

	t.Run("debit without an account", func(t *testing.T) {
		st := newStore(t)

		ok, err := st.Accounts().Debit(ctx, "nobody")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("check violation is not reported as already-exists", func(t *testing.T) {
		st := newStore(t)
		u := insertUser(t, st, "joe@example.com")

		err := st.Accounts().CreateAccount(ctx, domain.InvitationAccount{
			UserID: u.ID, OriginalCount: 1, CurrentCount: -1,
		})
		require.Error(t, err)
		require.NotErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("credit raises both counters", func(t *testing.T) {
		st := newStore(t)
		u := insertUser(t, st, "joe@example.com")
		require.NoError(t, st.Accounts().CreateAccount(ctx, domain.InvitationAccount{
			UserID: u.ID, OriginalCount: 2, CurrentCount: 1,
		}))

		require.NoError(t, st.Accounts().Credit(ctx, u.ID, 3))

		a, err := st.Accounts().GetAccount(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 5, a.OriginalCount)
		require.Equal(t, 4, a.CurrentCount)
	})
}

func TestPendingRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newPending := func(email, token string) domain.PendingRegistration {
		return domain.PendingRegistration{
			ID:            idx.New().String(),
			Email:         email,
			LoginToken:    token,
			SecretKeyHash: "fingerprint",
			InviterID:     "inviter",
		}
	}

	t.Run("roundtrip and delete", func(t *testing.T) {
		st := newStore(t)
		p := newPending("bob@example.com", "token-1")
		require.NoError(t, st.Pending().CreatePending(ctx, p))

		byToken, err := st.Pending().GetPendingByToken(ctx, "token-1")
		require.NoError(t, err)
		require.Equal(t, p.ID, byToken.ID)

		byEmail, err := st.Pending().GetPendingByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		require.Equal(t, p.ID, byEmail.ID)

		require.NoError(t, st.Pending().DeletePending(ctx, p.ID))

		_, err = st.Pending().GetPendingByToken(ctx, "token-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.Pending().CreatePending(ctx, newPending("bob@example.com", "token-1")))

		err := st.Pending().CreatePending(ctx, newPending("bob@example.com", "token-2"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("survives inviter deletion", func(t *testing.T) {
		st := newStore(t)
		inviter := insertUser(t, st, "joe@example.com")

		p := newPending("bob@example.com", "token-1")
		p.InviterID = inviter.ID
		require.NoError(t, st.Pending().CreatePending(ctx, p))

		require.NoError(t, st.Users().DeleteUser(ctx, inviter.ID))

		got, err := st.Pending().GetPendingByToken(ctx, "token-1")
		require.NoError(t, err)
		require.Equal(t, inviter.ID, got.InviterID)
	})
}

func TestConnectionsRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("duplicate edge is ignored", func(t *testing.T) {
		st := newStore(t)
		a := insertUser(t, st, "a@example.com")
		b := insertUser(t, st, "b@example.com")

		require.NoError(t, st.Connections().AddConnection(ctx, a.ID, b.ID))
		require.NoError(t, st.Connections().AddConnection(ctx, a.ID, b.ID))

		edges, err := st.Connections().ListConnections(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		require.Equal(t, b.ID, edges[0].ID)
	})

	t.Run("schema drops self loops", func(t *testing.T) {
		st := newStore(t)
		a := insertUser(t, st, "a@example.com")

		// The CHECK constraint combined with OR IGNORE silently discards
		// the row; the service layer rejects self loops before this point.
		require.NoError(t, st.Connections().AddConnection(ctx, a.ID, a.ID))

		edges, err := st.Connections().ListConnections(ctx, a.ID)
		require.NoError(t, err)
		require.Empty(t, edges)
	})
}

func TestSessionsRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("expired tokens are invisible and reaped", func(t *testing.T) {
		st := newStore(t)
		u := insertUser(t, st, "joe@example.com")

		require.NoError(t, st.Sessions().CreateSessionToken(ctx, domain.SessionToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: "live",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
		require.NoError(t, st.Sessions().CreateSessionToken(ctx, domain.SessionToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: "stale",
			ExpiresAt: time.Now().Add(-time.Hour),
		}))

		_, err := st.Sessions().GetSessionTokenByHash(ctx, "live")
		require.NoError(t, err)

		_, err = st.Sessions().GetSessionTokenByHash(ctx, "stale")
		require.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, st.Sessions().DeleteExpiredSessionTokens(ctx))

		_, err = st.Sessions().GetSessionTokenByHash(ctx, "live")
		require.NoError(t, err)
	})
}

func TestWithTx(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rolls back on error", func(t *testing.T) {
		st := newStore(t)

		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().CreateUser(ctx, domain.User{
				ID:    idx.New().String(),
				Email: "joe@example.com",
				Role:  domain.RoleUser,
			}); err != nil {
				return err
			}
			return context.Canceled
		})
		require.ErrorIs(t, err, context.Canceled)

		_, err = st.Users().GetUserByEmail(ctx, "joe@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commits on success", func(t *testing.T) {
		st := newStore(t)

		err := st.WithTx(ctx, func(tx store.Tx) error {
			return tx.Users().CreateUser(ctx, domain.User{
				ID:    idx.New().String(),
				Email: "joe@example.com",
				Role:  domain.RoleUser,
			})
		})
		require.NoError(t, err)

		_, err = st.Users().GetUserByEmail(ctx, "joe@example.com")
		require.NoError(t, err)
	})
}
