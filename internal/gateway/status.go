package gateway

import (
	"net/http"
	"time"

	"github.com/azura-ai/azura/internal/core"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Version          string   `json:"version"`
	UptimeSeconds    int64    `json:"uptime_seconds"`
	Channels         []string `json:"channels"`
	EventSubscribers int      `json:"event_subscribers"`
	WebhookSources   []string `json:"webhook_sources"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Version:          core.Version,
			UptimeSeconds:    int64(time.Since(g.startedAt).Seconds()),
			Channels:         []string{},
			EventSubscribers: g.hub.ClientCount(),
			WebhookSources:   g.dispatcher.Sources(),
		}
		if g.channels != nil {
			resp.Channels = g.channels.Channels()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
