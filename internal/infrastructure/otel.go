package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"vendasetl/internal/config"
)

const (
	ServiceName = "vendas-etl"
	MeterName   = "vendasetl"
)

// OTelProviders holds the OpenTelemetry providers for one run. Tracer and
// Meter are always usable; they are no-ops when the matching signal is off.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *promclient.Registry
	Logger         *slog.Logger

	metricsFile string
	traceOut    io.WriteCloser
}

// InitializeOTel sets up tracing to a JSON file and metrics to a Prometheus
// registry that is dumped as a textfile on Shutdown.
func InitializeOTel(ctx context.Context, cfg config.TelemetryConfig, paths *config.Paths, logger *slog.Logger) (*OTelProviders, error) {
	logger.DebugContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.TracingEnabled),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled))

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	res := createResource(cfg)

	if cfg.TracingEnabled {
		if err := initializeTracing(ctx, cfg, paths.TraceFile, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.MetricsEnabled {
		if err := initializeMetrics(ctx, res, providers); err != nil {
			providers.Shutdown(ctx)
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
		providers.metricsFile = paths.MetricsFile
	}

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg config.TelemetryConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

// initializeTracing writes spans as pretty-printed JSON to traceFile
func initializeTracing(ctx context.Context, cfg config.TelemetryConfig, traceFile string, res *resource.Resource, providers *OTelProviders) error {
	if traceFile == "" {
		return fmt.Errorf("trace file path is empty")
	}

	file, err := os.OpenFile(traceFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trace file %s: %w", traceFile, err)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	providers.traceOut = file

	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("file", traceFile),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics wires the Prometheus exporter to a private registry so a
// run only ever dumps its own series.
func initializeMetrics(ctx context.Context, res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	providers.Registry = registry

	otel.SetMeterProvider(mp)

	providers.Logger.DebugContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// PipelineMetrics holds the instruments recorded by the cleaning pipeline
type PipelineMetrics struct {
	RunsTotal     metric.Int64Counter
	RunDuration   metric.Float64Histogram
	StageDuration metric.Float64Histogram
	RowsProcessed metric.Int64Counter
	CellsParsed   metric.Int64Counter
	Errors        metric.Int64Counter
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"vendas_runs_total",
		metric.WithDescription("Total number of cleaning runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"vendas_run_duration_seconds",
		metric.WithDescription("Cleaning run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"vendas_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsProcessed, err := meter.Int64Counter(
		"vendas_rows_total",
		metric.WithDescription("Rows produced per table"),
	)
	if err != nil {
		return nil, err
	}

	cellsParsed, err := meter.Int64Counter(
		"vendas_cells_parsed_total",
		metric.WithDescription("Numeric cells coerced from text"),
	)
	if err != nil {
		return nil, err
	}

	errorsTotal, err := meter.Int64Counter(
		"vendas_errors_total",
		metric.WithDescription("Total number of failed runs by error type"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:     runsTotal,
		RunDuration:   runDuration,
		StageDuration: stageDuration,
		RowsProcessed: rowsProcessed,
		CellsParsed:   cellsParsed,
		Errors:        errorsTotal,
	}, nil
}

// RecordStage records the duration of one pipeline stage
func RecordStage(ctx context.Context, metrics *PipelineMetrics, stage string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.StageDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordRows records the row count of an output table
func RecordRows(ctx context.Context, metrics *PipelineMetrics, table string, rows int) {
	if metrics == nil {
		return
	}
	metrics.RowsProcessed.Add(ctx, int64(rows),
		metric.WithAttributes(attribute.String("table", table)))
}

// RecordRun records the outcome of a whole run
func RecordRun(ctx context.Context, metrics *PipelineMetrics, duration time.Duration, errorType string) {
	if metrics == nil {
		return
	}

	status := "success"
	if errorType != "" {
		status = "error"
		metrics.Errors.Add(ctx, 1, metric.WithAttributes(attribute.String("error_type", errorType)))
	}

	attrs := metric.WithAttributes(attribute.String("status", status))
	metrics.RunsTotal.Add(ctx, 1, attrs)
	metrics.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// WriteMetrics dumps the current registry in Prometheus text format
func (p *OTelProviders) WriteMetrics() error {
	if p.Registry == nil || p.metricsFile == "" {
		return nil
	}
	if err := promclient.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", p.metricsFile, err)
	}
	return nil
}

// Shutdown flushes spans, writes the metrics file and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.traceOut != nil {
		if err := p.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
		p.traceOut = nil
	}

	// collection goes through the meter provider, so dump before stopping it
	if err := p.WriteMetrics(); err != nil {
		errs = append(errs, err)
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
