package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/azura-ai/azura/internal/security"
	"github.com/go-chi/chi/v5"
)

// WebhookHandler processes a validated webhook payload.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, source string, body []byte, headers http.Header) error
}

type webhookEntry struct {
	handler WebhookHandler
	secret  string
}

// WebhookDispatcher routes incoming webhooks to registered handlers with
// HMAC validation and payload sanity limits.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]webhookEntry
	secrets  map[string]string // per-source secrets from config
	logger   *slog.Logger

	maxBody  int
	maxDepth int
}

// NewWebhookDispatcher creates a ready-to-use dispatcher. The secrets map
// holds per-source HMAC secrets from the gateway config; handlers that
// register without a secret inherit the configured one.
func NewWebhookDispatcher(logger *slog.Logger, secrets map[string]string, maxBody, maxDepth int) *WebhookDispatcher {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	if maxDepth <= 0 {
		maxDepth = 20
	}
	return &WebhookDispatcher{
		handlers: make(map[string]webhookEntry),
		secrets:  secrets,
		logger:   logger,
		maxBody:  maxBody,
		maxDepth: maxDepth,
	}
}

// Register adds a handler for the given source. An empty secret falls back
// to the secret configured for the source, if any; handlers that do their
// own request validation pass "" and configure nothing.
func (d *WebhookDispatcher) Register(source string, h WebhookHandler, secret string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if secret == "" {
		secret = d.secrets[source]
	}
	d.handlers[source] = webhookEntry{handler: h, secret: secret}
}

// Sources returns the registered webhook sources in arbitrary order.
func (d *WebhookDispatcher) Sources() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sources := make([]string, 0, len(d.handlers))
	for s := range d.handlers {
		sources = append(sources, s)
	}
	return sources
}

// ServeHTTP implements http.Handler. It extracts the source from the chi
// URL param, enforces size and depth limits, validates HMAC if configured,
// and dispatches to the registered handler.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := chi.URLParam(r, "source")
	if source == "" {
		http.Error(w, "missing source", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(d.maxBody)))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusRequestEntityTooLarge)
		return
	}
	if err := security.ValidateMessageSize(body, d.maxBody); err != nil {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(body) > 0 {
		if err := security.ValidateJSONDepth(body, d.maxDepth); err != nil {
			d.logger.Warn("webhook payload rejected", "source", source, "error", err)
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
	}

	d.mu.RLock()
	entry, ok := d.handlers[source]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warn("webhook received for unregistered source", "source", source)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true,"warning":"no handler registered"}`))
		return
	}

	// Validate HMAC if a secret is configured for this source.
	if entry.secret != "" {
		sig := r.Header.Get("X-Signature-256")
		if !validateHMAC(body, sig, entry.secret) {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	if err := entry.handler.HandleWebhook(r.Context(), source, body, r.Header); err != nil {
		d.logger.Error("webhook handler failed", "source", source, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// validateHMAC checks an HMAC-SHA256 signature in constant time.
func validateHMAC(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
