// Package telemetry implements the telemetry.tracing module, exporting
// OpenTelemetry spans over OTLP HTTP. When the module is not loaded the
// global tracer provider stays a no-op, so instrumented code paths cost
// nothing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/azura-ai/azura/internal/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"gopkg.in/yaml.v3"
)

// exporterTimeout bounds the initial exporter setup.
const exporterTimeout = 10 * time.Second

func init() {
	core.RegisterModule(&Tracing{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Tracing)(nil)
	_ core.Configurable = (*Tracing)(nil)
	_ core.Provisioner  = (*Tracing)(nil)
	_ core.Validator    = (*Tracing)(nil)
	_ core.Starter      = (*Tracing)(nil)
	_ core.Stopper      = (*Tracing)(nil)
)

// Config holds the OTLP exporter configuration.
type Config struct {
	// Endpoint is the collector host:port, without scheme.
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// SampleRatio in [0,1]. 0 defaults to 1 (sample everything); the
	// volumes here are modest.
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName overrides the reported service.name.
	ServiceName string `yaml:"service_name"`

	// Headers are added to every export request (e.g. auth tokens).
	Headers map[string]string `yaml:"headers"`
}

func (c *Config) defaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = 1
	}
	if c.ServiceName == "" {
		c.ServiceName = "azura"
	}
}

// Tracing is the telemetry.tracing module.
type Tracing struct {
	config   Config
	logger   *slog.Logger
	provider *sdktrace.TracerProvider
}

// ModuleInfo implements core.Module.
func (t *Tracing) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "telemetry.tracing",
		New: func() core.Module { return &Tracing{} },
	}
}

// Configure implements core.Configurable.
func (t *Tracing) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("telemetry: decode config: %w", err)
	}
	t.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (t *Tracing) Provision(ctx *core.AppContext) error {
	t.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator. Defaults are applied here as well
// so the module loads cleanly without a config block.
func (t *Tracing) Validate() error {
	t.config.defaults()
	if t.config.SampleRatio < 0 || t.config.SampleRatio > 1 {
		return fmt.Errorf("telemetry: sample_ratio must be in [0,1], got %g", t.config.SampleRatio)
	}
	return nil
}

// Start implements core.Starter. It builds the OTLP HTTP exporter and
// installs the tracer provider globally.
func (t *Tracing) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), exporterTimeout)
	defer cancel()

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(t.config.Endpoint),
	}
	if t.config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(t.config.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(t.config.Headers))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("telemetry: create exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(t.config.ServiceName),
			semconv.ServiceVersion(core.Version),
		),
	)
	if err != nil {
		return fmt.Errorf("telemetry: build resource: %w", err)
	}

	t.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.config.SampleRatio))),
	)
	otel.SetTracerProvider(t.provider)

	t.logger.Info("tracing enabled",
		"endpoint", t.config.Endpoint,
		"sample_ratio", t.config.SampleRatio,
	)
	return nil
}

// Stop implements core.Stopper. Flushes buffered spans.
func (t *Tracing) Stop(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("telemetry: shutdown: %w", err)
	}
	return nil
}
