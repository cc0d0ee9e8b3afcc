// Package telemetry wires OpenTelemetry tracing, metrics and log export for
// the billing service.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long a provider may spend flushing on exit
const shutdownTimeout = 10 * time.Second

// Config holds the settings shared by every OTLP exporter
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	ServiceVersion    string
	SamplingRatio     float64
	Insecure          bool
	// ExportInterval is how often metrics are pushed. Default: 60s
	ExportInterval time.Duration
}

func newResource(cfg Config) (*resource.Resource, error) {
	version := cfg.ServiceVersion
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// sdkProvider is the part of the trace, metric and log SDK providers the
// wrappers drive on exit
type sdkProvider interface {
	Shutdown(ctx context.Context) error
}

// shutdownProvider flushes p within shutdownTimeout. signal names the
// pipeline in errors ("tracer", "meter", "logger").
func shutdownProvider(ctx context.Context, logger *zap.Logger, signal string, p sdkProvider) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		logger.Error("OTEL provider shutdown failed", zap.String("signal", signal), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", signal, err)
	}
	return nil
}
