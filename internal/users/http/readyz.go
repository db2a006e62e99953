package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/pkg/httpx"
)

// ReadyzHandler is the readiness probe. Degrades to 503 when the database
// stops answering.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Database: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
