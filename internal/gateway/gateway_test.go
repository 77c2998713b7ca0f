package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/storage/storagetest"
)

func TestGateway_ModuleInfo(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	info := g.ModuleInfo()

	if info.ID != "gateway.http" {
		t.Errorf("ID = %q, want %q", info.ID, "gateway.http")
	}
	if info.New == nil {
		t.Fatal("New func is nil")
	}
	if _, ok := info.New().(*Gateway); !ok {
		t.Error("New() should return *Gateway")
	}
}

func TestGateway_ConfigureDefaults(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	if err := g.Configure(mustYAMLNode(t, "{}")); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if g.config.Bind != "127.0.0.1:8080" {
		t.Errorf("Bind = %q, want default", g.config.Bind)
	}
	if g.config.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", g.config.ReadTimeout)
	}
	if g.config.MaxBodyBytes != 1<<20 {
		t.Errorf("MaxBodyBytes = %d, want 1 MiB", g.config.MaxBodyBytes)
	}
	if g.config.MaxJSONDepth != 20 {
		t.Errorf("MaxJSONDepth = %d, want 20", g.config.MaxJSONDepth)
	}
}

func TestGateway_ConfigureCustom(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	err := g.Configure(mustYAMLNode(t, `
bind: "0.0.0.0:9090"
read_timeout: 5s
auth:
  bearer_token: "my-token"
webhooks:
  github:
    secret: "gh-secret"
`))
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if g.config.Bind != "0.0.0.0:9090" {
		t.Errorf("Bind = %q", g.config.Bind)
	}
	if g.config.Auth.BearerToken != "my-token" {
		t.Errorf("BearerToken = %q", g.config.Auth.BearerToken)
	}
	if g.config.Webhooks["github"].Secret != "gh-secret" {
		t.Errorf("webhook secret = %q", g.config.Webhooks["github"].Secret)
	}
}

func TestGateway_ValidateRejectsBadBind(t *testing.T) {
	t.Parallel()

	g := &Gateway{config: Config{Bind: "not-a-bind-addr"}}
	if err := g.Validate(); err == nil {
		t.Error("Validate() should reject an invalid bind address")
	}
}

func TestGateway_ProvisionRegistersServices(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	if err := g.Configure(mustYAMLNode(t, "{}")); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	appCtx := core.NewAppContext(testLogger(), t.TempDir())
	if err := g.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	for _, name := range []string{"gateway.metrics", "gateway.events", "gateway.webhook_dispatcher"} {
		if _, ok := appCtx.Service(name); !ok {
			t.Errorf("service %q not registered", name)
		}
	}
}

// TestGateway_Lifecycle starts a real server on an ephemeral port and
// exercises the public endpoints over the wire.
func TestGateway_Lifecycle(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	if err := g.Configure(mustYAMLNode(t, `bind: "127.0.0.1:0"`)); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	appCtx := core.NewAppContext(testLogger(), t.TempDir())
	appCtx.RegisterService("store", storagetest.NewMemStore())
	if err := g.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		if err := g.Stop(context.Background()); err != nil {
			t.Errorf("Stop: %v", err)
		}
	}()

	base := "http://" + g.addr.String()

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/health status = %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Database != "ok" {
		t.Errorf("Database = %q, want ok", health.Database)
	}

	promResp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer promResp.Body.Close()
	if promResp.StatusCode != http.StatusOK {
		t.Errorf("/metrics status = %d", promResp.StatusCode)
	}
}

func TestGateway_StopWithoutStart(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	if err := g.Stop(context.Background()); err != nil {
		t.Errorf("Stop() before Start() should be a no-op, got %v", err)
	}
}
