package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "azura.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadBasic(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  store.sql:
    dsn: azura.db
  channel.telegram:
    token: "123:abc"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Version != "1" {
		t.Errorf("version: got %q, want %q", cfg.Version, "1")
	}
	if len(cfg.Modules) != 2 {
		t.Errorf("modules: got %d, want 2", len(cfg.Modules))
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "42:secret")

	path := writeConfig(t, `
version: "1"
modules:
  channel.telegram:
    token: "${TEST_BOT_TOKEN}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var tele struct {
		Token string `yaml:"token"`
	}
	node := cfg.Modules["channel.telegram"]
	if err := node.Decode(&tele); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tele.Token != "42:secret" {
		t.Errorf("token: got %q, want %q", tele.Token, "42:secret")
	}
}

func TestLoadEnvDefault(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  store.sql:
    dsn: "${TEST_UNSET_DSN:-azura.db}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var store struct {
		DSN string `yaml:"dsn"`
	}
	node := cfg.Modules["store.sql"]
	if err := node.Decode(&store); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if store.DSN != "azura.db" {
		t.Errorf("dsn: got %q, want %q", store.DSN, "azura.db")
	}
}

func TestLoadUnresolvedEnv(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  channel.telegram:
    token: "${TEST_DEFINITELY_UNSET_VAR}"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "TEST_DEFINITELY_UNSET_VAR") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestValidateVersion(t *testing.T) {
	cfg := &Config{Version: "2"}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
	if !strings.Contains(err.Error(), "unsupported version") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateNoModules(t *testing.T) {
	cfg := &Config{Version: "1"}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for empty modules")
	}
}

func TestResolveSorted(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  store.sql: {}
  channel.telegram: {}
  scraper.reddit: {}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	ids := Resolve(cfg)
	want := []string{"channel.telegram", "scraper.reddit", "store.sql"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("id %d: got %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestLoadSecurityBlock(t *testing.T) {
	path := writeConfig(t, `
version: "1"
security:
  rate_limits:
    commands_per_min: 10
    analyses_per_min: 2
modules:
  store.sql: {}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Security == nil {
		t.Fatal("security block not decoded")
	}
	if got := cfg.Security.RateLimits.CommandsPerMin; got != 10 {
		t.Errorf("commands_per_min: got %d, want 10", got)
	}
	if got := cfg.Security.RateLimits.AnalysesPerMin; got != 2 {
		t.Errorf("analyses_per_min: got %d, want 2", got)
	}
}

func TestLoadSecurityOmitted(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  store.sql: {}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Security != nil {
		t.Errorf("security: got %+v, want nil", cfg.Security)
	}
}
