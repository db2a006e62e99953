package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/crewhub/internal/users/domain"
)

func TestConnections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("add and list", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ConnectionService{Store: st}

		owner, principal := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)
		bob, _ := seedUser(t, st, "bob@example.com", domain.RoleUser, 1)
		carol, _ := seedUser(t, st, "carol@example.com", domain.RoleUser, 1)

		require.NoError(t, svc.Add(ctx, principal, owner.ID, bob.ID))
		require.NoError(t, svc.Add(ctx, principal, owner.ID, carol.ID))

		connections, err := svc.List(ctx, principal, owner.ID)
		require.NoError(t, err)

		ids := make([]string, 0, len(connections))
		for _, c := range connections {
			ids = append(ids, c.ID)
		}
		require.ElementsMatch(t, []string{bob.ID, carol.ID}, ids)
	})

	t.Run("re-adding an edge is a no-op", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ConnectionService{Store: st}

		owner, principal := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)
		bob, _ := seedUser(t, st, "bob@example.com", domain.RoleUser, 1)

		require.NoError(t, svc.Add(ctx, principal, owner.ID, bob.ID))
		require.NoError(t, svc.Add(ctx, principal, owner.ID, bob.ID))

		connections, err := svc.List(ctx, principal, owner.ID)
		require.NoError(t, err)
		require.Len(t, connections, 1)
	})

	t.Run("edges are directed", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ConnectionService{Store: st}

		owner, ownerPrincipal := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)
		bob, bobPrincipal := seedUser(t, st, "bob@example.com", domain.RoleUser, 1)

		require.NoError(t, svc.Add(ctx, ownerPrincipal, owner.ID, bob.ID))

		connections, err := svc.List(ctx, bobPrincipal, bob.ID)
		require.NoError(t, err)
		require.Empty(t, connections)
	})

	t.Run("only the owner touches their graph", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ConnectionService{Store: st}

		owner, _ := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)
		bob, bobPrincipal := seedUser(t, st, "bob@example.com", domain.RoleUser, 1)

		require.ErrorIs(t, svc.Add(ctx, bobPrincipal, owner.ID, bob.ID), ErrForbidden)

		_, err := svc.List(ctx, bobPrincipal, owner.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admins get no shortcut", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ConnectionService{Store: st}

		owner, _ := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)
		_, adminPrincipal := seedUser(t, st, "admin@example.com", domain.RoleAdmin, 1)

		_, err := svc.List(ctx, adminPrincipal, owner.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("self loop is denied", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ConnectionService{Store: st}

		owner, principal := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)
		require.ErrorIs(t, svc.Add(ctx, principal, owner.ID, owner.ID), ErrForbidden)
	})

	t.Run("unknown target", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ConnectionService{Store: st}

		owner, principal := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)
		require.ErrorIs(t, svc.Add(ctx, principal, owner.ID, "nonexistent"), ErrUserNotFound)
	})
}
