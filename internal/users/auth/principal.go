package auth

import (
	"context"

	"github.com/aussiebroadwan/crewhub/internal/users/domain"
)

// Principal identifies an authenticated caller. Every guarded operation
// receives one; how the caller authenticated (basic or session token) is
// invisible past this point.
type Principal struct {
	UserID string
	Email  string
	Role   domain.Role
}

func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

type ctxKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
