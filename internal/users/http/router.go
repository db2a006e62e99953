package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/crewhub/internal/users/auth"
	"github.com/aussiebroadwan/crewhub/internal/users/service"
	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/pkg/httpx"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	authn             httpx.Middleware
	UserService       *service.UserService
	InviteService     *service.InviteService
	ConnectionService *service.ConnectionService
	SessionService    *service.SessionService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	// Both credential schemes are accepted everywhere authentication is
	// required: Basic for first contact, the session token pair after.
	r.authn = auth.Middleware(
		&auth.BasicResolver{Store: r.store},
		&auth.TokenResolver{Sessions: r.SessionService},
	)

	r.registerLogin()
	r.registerUsers()
	r.registerConnections()
	r.registerInvites()
	r.registerRegistration()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{UserService: r.UserService, SessionService: r.SessionService}

	// GET /login - strict rate limit by IP (password attempts land here)
	r.Mux.Handle("GET /v1/login",
		httpx.Chain(h,
			r.authn,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// GET /users/{email} - lenient rate limit by user
	r.Mux.Handle("GET /v1/users/{email}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// POST /users - admin operation, moderate limit
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			r.authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// DELETE /users/{id} - admin operation, moderate limit
	r.Mux.Handle("DELETE /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerConnections() {
	h := &ConnectionsHandler{ConnectionService: r.ConnectionService}

	r.Mux.Handle("GET /v1/users/{id}/connections",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("PUT /v1/users/{id}/connections/{target}",
		httpx.Chain(http.HandlerFunc(h.HandleAdd),
			r.authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InviteHandler{InviteService: r.InviteService}

	// PUT /users/{id}/invite/{email} - moderate rate limit by user
	r.Mux.Handle("PUT /v1/users/{id}/invite/{email}",
		httpx.Chain(h,
			r.authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerRegistration() {
	h := &RegistrationHandler{InviteService: r.InviteService}

	// PUT /register/{token} - strict rate limit by IP (public endpoint,
	// the key is guessable in theory)
	r.Mux.Handle("PUT /v1/register/{token}",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
