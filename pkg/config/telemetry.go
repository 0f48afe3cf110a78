package config

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/version"
)

const (
	serviceName    = "irt"
	stdoutEndpoint = "stdout"
)

type Telemetry struct {
	ctx    context.Context
	metric *metric.MeterProvider
	trace  *trace.TracerProvider
}

// SetupTelemetry installs global meter and tracer providers.
// The exporters send to TelemetryEndpoint via OTLP gRPC unless the endpoint
// is "stdout".
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version.Version),
		))
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, res)
	if err != nil {
		return nil, err
	}
	tp, err := newTracerProvider(ctx, res)
	if err != nil {
		return nil, errors.Join(err, mp.Shutdown(ctx))
	}
	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)
	return &Telemetry{ctx: ctx, metric: mp, trace: tp}, nil
}

func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(t.ctx, 5*time.Second)
	defer cancel()
	if err := t.metric.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down meter provider", log.ErrorField(err))
	}
	if err := t.trace.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down tracer provider", log.ErrorField(err))
	}
}

//nolint:whitespace // can't make both editor and linter happy
func newMeterProvider(
	ctx context.Context, res *resource.Resource,
) (*metric.MeterProvider, error) {
	var exporter metric.Exporter
	var err error
	if TelemetryEndpoint == stdoutEndpoint {
		exporter, err = stdoutmetric.New()
	} else {
		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
			otlpmetricgrpc.WithInsecure())
	}
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter,
			metric.WithInterval(15*time.Second))),
	), nil
}

//nolint:whitespace // can't make both editor and linter happy
func newTracerProvider(
	ctx context.Context, res *resource.Resource,
) (*trace.TracerProvider, error) {
	var exporter trace.SpanExporter
	var err error
	if TelemetryEndpoint == stdoutEndpoint {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	} else {
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(TelemetryEndpoint),
			otlptracegrpc.WithInsecure())
	}
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
	), nil
}
