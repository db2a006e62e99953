package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aussiebroadwan/crewhub/internal/users/service"
	"github.com/aussiebroadwan/crewhub/pkg/httpx"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

// RegistrationHandler completes an invited registration. Unauthenticated:
// the login token in the path and the mailed key in the query are the
// credentials.
type RegistrationHandler struct {
	InviteService *service.InviteService
}

func (h *RegistrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.PathValue("token")
	key := r.URL.Query().Get("key")
	if key == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "key query parameter is required")
		return
	}

	// The body is optional; absent fields fall back to what the inviter
	// provided.
	var req CompleteRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	user, err := h.InviteService.CompleteRegistration(ctx, token, key, req.FirstName, req.LastName, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserInfo(user))
}
