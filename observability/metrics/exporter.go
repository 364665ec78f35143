// Package metrics exports client counters through OpenTelemetry.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Exporter owns a meter provider that pushes to an OTLP collector.
type Exporter struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	serviceName      string
	serviceVersion   string
	environment      string
	otlpEndpoint     string
	otlpGRPCEndpoint string
	interval         time.Duration
	reader           sdkmetric.Reader
	global           bool
}

type Option func(*Exporter)

func WithServiceName(name string) Option {
	return func(e *Exporter) {
		e.serviceName = name
	}
}

func WithServiceVersion(version string) Option {
	return func(e *Exporter) {
		e.serviceVersion = version
	}
}

func WithEnvironment(env string) Option {
	return func(e *Exporter) {
		e.environment = env
	}
}

// WithOTLPEndpoint sets the OTLP HTTP endpoint, host:port.
func WithOTLPEndpoint(endpoint string) Option {
	return func(e *Exporter) {
		e.otlpEndpoint = endpoint
	}
}

// WithOTLPGRPCEndpoint selects OTLP over gRPC instead of HTTP.
func WithOTLPGRPCEndpoint(endpoint string) Option {
	return func(e *Exporter) {
		e.otlpGRPCEndpoint = endpoint
	}
}

func WithInterval(d time.Duration) Option {
	return func(e *Exporter) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithReader replaces the OTLP pipeline with reader, for example a manual
// reader in tests.
func WithReader(reader sdkmetric.Reader) Option {
	return func(e *Exporter) {
		e.reader = reader
	}
}

// WithGlobal installs the provider as the process wide meter provider.
func WithGlobal() Option {
	return func(e *Exporter) {
		e.global = true
	}
}

func NewExporter(ctx context.Context, opts ...Option) (*Exporter, error) {
	e := &Exporter{
		serviceName:    "stomp-client",
		serviceVersion: "1.0.0",
		environment:    "development",
		otlpEndpoint:   "localhost:4318",
		interval:       10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reader == nil && e.otlpGRPCEndpoint == "" && e.otlpEndpoint == "" {
		return nil, fmt.Errorf("OTLP endpoint is required")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(e.serviceName),
			semconv.ServiceVersion(e.serviceVersion),
			semconv.DeploymentEnvironment(e.environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader := e.reader
	if reader == nil {
		exporter, err := e.newOTLPExporter(ctx)
		if err != nil {
			return nil, err
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(e.interval))
	}

	e.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	if e.global {
		otel.SetMeterProvider(e.provider)
	}
	e.meter = e.provider.Meter(e.serviceName)
	return e, nil
}

func (e *Exporter) newOTLPExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	if e.otlpGRPCEndpoint != "" {
		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(e.otlpGRPCEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		return exporter, nil
	}
	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(e.otlpEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return exporter, nil
}

func (e *Exporter) Meter() metric.Meter {
	return e.meter
}

// Shutdown flushes pending metrics and stops the provider.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
