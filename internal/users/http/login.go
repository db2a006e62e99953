package http

import (
	"net/http"

	"github.com/aussiebroadwan/crewhub/internal/users/auth"
	"github.com/aussiebroadwan/crewhub/internal/users/service"
	"github.com/aussiebroadwan/crewhub/pkg/httpx"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

// LoginHandler exchanges already-verified credentials for a session token.
// The authentication middleware has done the hard part; this endpoint mints
// the token and echoes the caller's identity.
type LoginHandler struct {
	UserService    *service.UserService
	SessionService *service.SessionService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	user, err := h.UserService.GetUserByEmail(ctx, principal, principal.Email)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	token, err := h.SessionService.Login(ctx, principal)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		UserInfo:  toUserInfo(user),
		AuthToken: token,
	})
}
