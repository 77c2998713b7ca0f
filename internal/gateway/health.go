package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/azura-ai/azura/internal/core"
)

// dbPingTimeout bounds the connectivity check on /health.
const dbPingTimeout = 2 * time.Second

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status        string `json:"status"` // "ok" or "degraded"
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Database      string `json:"database,omitempty"` // "ok" or "error"
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 when the database is reachable, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:        "ok",
			Version:       core.Version,
			UptimeSeconds: int64(time.Since(g.startedAt).Seconds()),
		}

		if g.store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), dbPingTimeout)
			defer cancel()
			if err := g.store.Ping(ctx); err != nil {
				resp.Status = "degraded"
				resp.Database = "error"
			} else {
				resp.Database = "ok"
			}
		}

		code := http.StatusOK
		if resp.Status == "degraded" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	}
}
