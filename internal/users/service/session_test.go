package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/crewhub/internal/users/domain"
)

func TestSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	secret := []byte("test-session-secret-test-session-secret")

	t.Run("login and resolve roundtrip", func(t *testing.T) {
		st := newTestStore(t)
		svc := &SessionService{Store: st, Secret: secret, TTL: time.Hour}

		user, principal := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)

		raw, err := svc.Login(ctx, principal)
		require.NoError(t, err)
		require.NotEmpty(t, raw)

		resolved, err := svc.ResolveToken(ctx, raw)
		require.NoError(t, err)
		require.Equal(t, user.ID, resolved.UserID)
		require.Equal(t, user.Email, resolved.Email)
		require.Equal(t, domain.RoleUser, resolved.Role)
	})

	t.Run("rejects tampered tokens", func(t *testing.T) {
		st := newTestStore(t)
		svc := &SessionService{Store: st, Secret: secret, TTL: time.Hour}

		_, principal := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)

		raw, err := svc.Login(ctx, principal)
		require.NoError(t, err)

		_, err = svc.ResolveToken(ctx, raw+"x")
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("rejects well-signed tokens that were never issued", func(t *testing.T) {
		st := newTestStore(t)
		svc := &SessionService{Store: st, Secret: secret, TTL: time.Hour}

		user, _ := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)

		// Valid signature and claims, but no stored fingerprint: revoked
		// or forged tokens stop here.
		claims := jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ID:        "forged",
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)

		_, err = svc.ResolveToken(ctx, raw)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		st := newTestStore(t)
		svc := &SessionService{Store: st, Secret: secret, TTL: -time.Minute}

		_, principal := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)

		raw, err := svc.Login(ctx, principal)
		require.NoError(t, err)

		_, err = svc.ResolveToken(ctx, raw)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("token dies with its user", func(t *testing.T) {
		st := newTestStore(t)
		svc := &SessionService{Store: st, Secret: secret, TTL: time.Hour}

		user, principal := seedUser(t, st, "joe@example.com", domain.RoleUser, 1)

		raw, err := svc.Login(ctx, principal)
		require.NoError(t, err)

		require.NoError(t, st.Users().DeleteUser(ctx, user.ID))

		_, err = svc.ResolveToken(ctx, raw)
		require.ErrorIs(t, err, ErrInvalidSession)
	})
}
