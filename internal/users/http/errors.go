package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/crewhub/internal/users/service"
	"github.com/aussiebroadwan/crewhub/pkg/httpx"
)

// writeServiceError maps service sentinels onto HTTP statuses. Quota
// exhaustion and permission failures share 403 but keep distinct error
// codes so clients can tell them apart.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing or malformed parameters")
	case errors.Is(err, service.ErrUnknownToken):
		httpx.WriteError(w, http.StatusBadRequest, "unknown_token", "Registration token unknown or already used")
	case errors.Is(err, service.ErrInvalidKey):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_key", "Registration key does not match")
	case errors.Is(err, service.ErrInvalidSession):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_session", "Session token invalid or expired")
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Operation not permitted")
	case errors.Is(err, service.ErrInsufficientQuota):
		httpx.WriteError(w, http.StatusForbidden, "invitation_quota_exceeded", "No invitations remaining")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
	case errors.Is(err, service.ErrEmailInUse):
		httpx.WriteError(w, http.StatusConflict, "email_in_use", "Email already registered or invited")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "email_in_use", "Email already registered")
	default:
		log.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
	}
}
