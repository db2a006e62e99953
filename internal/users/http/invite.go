package http

import (
	"net/http"

	"github.com/aussiebroadwan/crewhub/internal/users/auth"
	"github.com/aussiebroadwan/crewhub/internal/users/service"
	"github.com/aussiebroadwan/crewhub/pkg/httpx"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

// InviteHandler spends one unit of the path owner's invitation quota on the
// addressed email. The invitation mail goes out after the response; its
// delivery is not reflected in the status code.
type InviteHandler struct {
	InviteService *service.InviteService
}

func (h *InviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	err := h.InviteService.Invite(ctx, principal, r.PathValue("id"), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
