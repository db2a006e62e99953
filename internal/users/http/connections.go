package http

import (
	"net/http"

	"github.com/aussiebroadwan/crewhub/internal/users/auth"
	"github.com/aussiebroadwan/crewhub/internal/users/service"
	"github.com/aussiebroadwan/crewhub/pkg/httpx"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

type ConnectionsHandler struct {
	ConnectionService *service.ConnectionService
}

// HandleList returns the users the path owner connects to. Owner only.
func (h *ConnectionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	users, err := h.ConnectionService.List(ctx, principal, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	resp := ConnectionsResponse{Connections: make([]UserInfo, 0, len(users))}
	for _, u := range users {
		resp.Connections = append(resp.Connections, toUserInfo(u))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleAdd records the edge owner -> target. Re-adding succeeds quietly.
func (h *ConnectionsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	err := h.ConnectionService.Add(ctx, principal, r.PathValue("id"), r.PathValue("target"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
