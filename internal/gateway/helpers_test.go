package gateway

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/storage/storagetest"
	"gopkg.in/yaml.v3"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func signPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func mustYAMLNode(t *testing.T, s string) *yaml.Node {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(s), &node); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	return node.Content[0]
}

// newTestGateway builds a provisioned gateway with an in-memory store and
// a router, without binding a listener.
func newTestGateway(t *testing.T, cfgYAML string, store *storagetest.MemStore) (*Gateway, http.Handler) {
	t.Helper()

	g := &Gateway{}
	if err := g.Configure(mustYAMLNode(t, cfgYAML)); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	appCtx := core.NewAppContext(testLogger(), t.TempDir())
	if err := g.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if store != nil {
		g.store = store
	}
	g.startedAt = time.Now()
	return g, g.buildRouter()
}
