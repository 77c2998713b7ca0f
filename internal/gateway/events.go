package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/azura-ai/azura/internal/storage"
	"github.com/coder/websocket"
)

// writeTimeout bounds a single frame write to a slow client.
const writeTimeout = 5 * time.Second

// Event is the JSON envelope broadcast to /ws/events subscribers.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// Hub fans analysis events out to connected WebSocket clients. Slow
// clients drop events instead of blocking the pipeline.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	closed  bool
}

type hubClient struct {
	msgs chan []byte
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*hubClient]struct{}),
	}
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects or the hub shuts down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket accept failed", "error", err)
		return
	}

	client := &hubClient{msgs: make(chan []byte, 16)}
	if !h.add(client) {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.remove(client)

	// CloseRead cancels the context when the client closes or sends data.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg, ok := <-client.msgs:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Broadcast sends an event to every connected client. Events to clients
// with a full send buffer are dropped.
func (h *Hub) Broadcast(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("event marshal failed", "type", ev.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.msgs <- data:
		default:
			h.logger.Debug("dropping event for slow websocket client", "type", ev.Type)
		}
	}
}

// BroadcastAnalysis publishes a completed analysis.
func (h *Hub) BroadcastAnalysis(a storage.MemeAnalysis) {
	h.Broadcast(Event{Type: "analysis", Data: a})
}

// BroadcastReport publishes a refreshed coin report.
func (h *Hub) BroadcastReport(r storage.CoinReport) {
	h.Broadcast(Event{Type: "coin_report", Data: r})
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients. New connections are refused afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.msgs)
	}
	h.clients = make(map[*hubClient]struct{})
}

func (h *Hub) add(c *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}
