package sqlstore

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
	"gopkg.in/yaml.v3"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()

	dir := t.TempDir()
	m := &Module{
		config: Config{
			DSN: filepath.Join(dir, "test.db"),
		},
	}
	m.config.defaults()

	ctx := core.NewAppContext(slog.Default(), dir)

	if err := m.Provision(ctx); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	t.Cleanup(func() {
		_ = m.Stop(context.Background())
	})

	return m
}

func TestModuleLifecycle(t *testing.T) {
	m := newTestModule(t)

	if m.Store() == nil {
		t.Fatal("expected store after provision")
	}
	if m.Migrations() == nil {
		t.Fatal("expected migration runner after provision")
	}

	current, err := m.Migrations().Current(context.Background())
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if want := storage.Migrations[len(storage.Migrations)-1].Version; current != want {
		t.Errorf("schema version = %d, want %d", current, want)
	}
}

func TestModuleRegistersServices(t *testing.T) {
	dir := t.TempDir()
	m := &Module{config: Config{DSN: filepath.Join(dir, "svc.db")}}
	m.config.defaults()

	ctx := core.NewAppContext(slog.Default(), dir)
	if err := m.Provision(ctx); err != nil {
		t.Fatalf("provision: %v", err)
	}
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	svc, ok := ctx.Service("store")
	if !ok {
		t.Fatal("store service not registered")
	}
	if _, ok := svc.(storage.Store); !ok {
		t.Fatalf("store service has type %T", svc)
	}

	if _, ok := ctx.Service("store.migrations"); !ok {
		t.Fatal("store.migrations service not registered")
	}
}

func TestModuleDefaultsToDataDir(t *testing.T) {
	dir := t.TempDir()
	m := &Module{}
	m.config.defaults()

	ctx := core.NewAppContext(slog.Default(), dir)
	if err := m.Provision(ctx); err != nil {
		t.Fatalf("provision: %v", err)
	}
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	if want := filepath.Join(dir, DefaultDBFile); m.config.DSN != want {
		t.Errorf("DSN = %q, want %q", m.config.DSN, want)
	}
}

func TestConfigure(t *testing.T) {
	t.Parallel()

	raw := `
dsn: /tmp/azura-test.db
wal: false
busy_timeout: 250
max_open_conns: 3
conn_max_lifetime: 5m
`
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	m := &Module{}
	if err := m.Configure(node.Content[0]); err != nil {
		t.Fatalf("configure: %v", err)
	}

	if m.config.DSN != "/tmp/azura-test.db" {
		t.Errorf("dsn = %q", m.config.DSN)
	}
	if m.config.walEnabled() {
		t.Error("wal should be disabled")
	}
	if m.config.BusyTimeout != 250 {
		t.Errorf("busy_timeout = %d", m.config.BusyTimeout)
	}
	if m.config.MaxOpenConns != 3 {
		t.Errorf("max_open_conns = %d", m.config.MaxOpenConns)
	}
	if m.config.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("conn_max_lifetime = %v", m.config.ConnMaxLifetime)
	}
}

func TestDialectSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dsn  string
		want storage.Dialect
	}{
		{"postgres://azura@db:5432/azura", storage.DialectPostgres},
		{"postgresql://azura@db:5432/azura", storage.DialectPostgres},
		{"/var/lib/azura/azura.db", storage.DialectSQLite},
		{"azura.db", storage.DialectSQLite},
		{"", storage.DialectSQLite},
	}

	for _, tt := range tests {
		c := Config{DSN: tt.dsn}
		if got := c.Dialect(); got != tt.want {
			t.Errorf("Dialect(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	c := Config{BusyTimeout: -1}
	if err := c.validate(); err == nil {
		t.Error("expected error for negative busy_timeout")
	}

	c = Config{MaxOpenConns: -2}
	if err := c.validate(); err == nil {
		t.Error("expected error for negative max_open_conns")
	}

	c = Config{}
	c.defaults()
	if err := c.validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// seedAnalysis builds a minimally-populated analysis for round-trip tests.
func seedAnalysis(hash string, createdAt time.Time) storage.MemeAnalysis {
	return storage.MemeAnalysis{
		Hash:     hash,
		Platform: post.PlatformReddit,
		Source:   "r/cryptomemes",
		Text:     "doge to the moon",
		Sentiment: storage.SentimentScores{
			Positive: 0.6, Negative: 0.1, Neutral: 0.3, Compound: 0.5,
		},
		ViralityScore:  0.4,
		EngagementRate: 0.2,
		Topics:         []string{"doge", "moon"},
		RelatedCoins:   []string{"DOGE"},
		PostCreatedAt:  createdAt.Add(-time.Hour),
		CreatedAt:      createdAt,
	}
}
