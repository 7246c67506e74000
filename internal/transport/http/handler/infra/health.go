package infra

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/types"
	"github.com/mandalnilabja/chatrelay/internal/version"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status        string `json:"status"`
	App           string `json:"app"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HealthCheck handler returns the application health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	_ = types.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:        "active",
		App:           "chatrelay",
		Version:       version.Version,
		UptimeSeconds: int64(time.Since(h.StartTime).Seconds()),
	})
}
