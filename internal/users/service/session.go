package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/crewhub/internal/users/auth"
	"github.com/aussiebroadwan/crewhub/internal/users/domain"
	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/pkg/cryptox"
	"github.com/aussiebroadwan/crewhub/pkg/idx"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

var ErrInvalidSession = errors.New("session token invalid or expired")

const sessionIssuer = "crewhub-users"

// SessionService mints and verifies session tokens for the X-Auth scheme. A
// token is a signed HS256 JWT whose fingerprint is also stored server-side,
// so deleting the row revokes the token before its exp claim fires.
type SessionService struct {
	Store  store.Store
	Secret []byte
	TTL    time.Duration
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Login exchanges a verified principal for a raw session token. The caller
// has already been authenticated (typically via Basic credentials).
func (s *SessionService) Login(ctx context.Context, principal auth.Principal) (string, error) {
	log := slogx.FromContext(ctx)

	now := time.Now().UTC()
	expires := now.Add(s.TTL)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   principal.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        idx.New().String(),
		},
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return "", err
	}

	if err := s.Store.Sessions().CreateSessionToken(ctx, domain.SessionToken{
		ID:        claims.ID,
		UserID:    principal.UserID,
		TokenHash: cryptox.FingerprintToken(raw),
		ExpiresAt: expires,
	}); err != nil {
		log.Error("failed to persist session token", slog.Any("error", err))
		return "", err
	}

	log.Info("session started", slog.String("user_id", principal.UserID))
	return raw, nil
}

// ResolveToken implements auth.SessionVerifier. Both the signature and the
// stored fingerprint must check out: a forged token fails the first, a
// revoked or expired one fails the second.
func (s *SessionService) ResolveToken(ctx context.Context, raw string) (auth.Principal, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(
		raw,
		&claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.Secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return auth.Principal{}, ErrInvalidSession
	}

	record, err := s.Store.Sessions().GetSessionTokenByHash(ctx, cryptox.FingerprintToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return auth.Principal{}, ErrInvalidSession
		}
		return auth.Principal{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return auth.Principal{}, ErrInvalidSession
		}
		return auth.Principal{}, err
	}

	return auth.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}
