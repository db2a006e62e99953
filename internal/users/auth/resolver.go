package auth

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/crewhub/pkg/httpx"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

var (
	// ErrNoCredentials means the request carries nothing this resolver
	// understands; the middleware moves on to the next scheme.
	ErrNoCredentials = errors.New("auth: no credentials presented")

	// ErrInvalidCredentials means the scheme matched but verification failed.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// Resolver turns request credentials into a Principal. Implementations
// exist per scheme (basic password auth, session token); all of them
// resolve into the same identity model.
type Resolver interface {
	Resolve(r *http.Request) (Principal, error)
}

// Middleware authenticates the request against each resolver in order.
// The first resolver whose scheme is present decides the outcome; a request
// carrying no recognizable credentials is rejected as unauthorized.
func Middleware(resolvers ...Resolver) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			for _, res := range resolvers {
				principal, err := res.Resolve(r)
				if errors.Is(err, ErrNoCredentials) {
					continue
				}
				if err != nil {
					log.Warn("authentication failed", "err", err)
					writeUnauthorized(w)
					return
				}

				ctx := ContextWithPrincipal(r.Context(), principal)
				ctx = httpx.ContextWithUserID(ctx, principal.UserID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			writeUnauthorized(w)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="crewhub"`)
	httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Valid credentials are required")
}
