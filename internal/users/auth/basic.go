package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/pkg/cryptox"
)

// BasicResolver authenticates HTTP basic credentials (email + password)
// against the user store.
type BasicResolver struct {
	Store store.Store
}

func (b *BasicResolver) Resolve(r *http.Request) (Principal, error) {
	email, password, ok := r.BasicAuth()
	if !ok {
		return Principal{}, ErrNoCredentials
	}

	user, err := b.Store.Users().GetUserByEmail(r.Context(), strings.ToLower(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, fmt.Errorf("auth: looking up user: %w", err)
	}

	// Users registered through an invitation may not have set a password
	// yet; an empty hash never verifies.
	if user.PasswordHash == "" {
		return Principal{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return Principal{}, ErrInvalidCredentials
	}

	return Principal{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}
