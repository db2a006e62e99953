package auth

import (
	"context"
	"net/http"
	"strings"
)

// Session token scheme headers. The client sends the email it logged in
// with alongside the opaque token minted at login.
const (
	HeaderAuthToken = "X-Auth"
	HeaderAuthEmail = "X-Email"
)

// SessionVerifier validates a raw session token and returns the principal
// it was minted for. Implemented by service.SessionService.
type SessionVerifier interface {
	ResolveToken(ctx context.Context, raw string) (Principal, error)
}

// TokenResolver authenticates the X-Auth/X-Email header pair.
type TokenResolver struct {
	Sessions SessionVerifier
}

func (t *TokenResolver) Resolve(r *http.Request) (Principal, error) {
	raw := r.Header.Get(HeaderAuthToken)
	if raw == "" {
		return Principal{}, ErrNoCredentials
	}

	principal, err := t.Sessions.ResolveToken(r.Context(), raw)
	if err != nil {
		return Principal{}, ErrInvalidCredentials
	}

	// The email header is advisory; a token presented for a different
	// identity than it was minted for is rejected. Stored emails are
	// lowercased, the header may not be.
	if email := r.Header.Get(HeaderAuthEmail); email != "" && !strings.EqualFold(email, principal.Email) {
		return Principal{}, ErrInvalidCredentials
	}

	return principal, nil
}
