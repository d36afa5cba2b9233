package dataprocessing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"vendasetl/internal/errors"
	"vendasetl/internal/infrastructure"
)

const (
	TracerName = "vendasetl.pipeline"
)

// PipelineTracer provides OpenTelemetry instrumentation for cleaning runs
type PipelineTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewPipelineTracer creates a tracer over the run's providers. A nil
// providers value gives a tracer that records nothing.
func NewPipelineTracer(providers *infrastructure.OTelProviders) (*PipelineTracer, error) {
	if providers == nil {
		return &PipelineTracer{tracer: tracenoop.NewTracerProvider().Tracer(TracerName)}, nil
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &PipelineTracer{
		tracer:  providers.Tracer,
		metrics: metrics,
	}, nil
}

// TraceRun creates a span for the whole run
func (pt *PipelineTracer) TraceRun(ctx context.Context, runID, input string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "vendas.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.input", input),
		),
	)
}

// TraceStage creates a span for one stage
func (pt *PipelineTracer) TraceStage(ctx context.Context, stage string, number, total int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("vendas.stage.%s", stage),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("stage.id", stage),
			attribute.Int("stage.number", number),
			attribute.Int("stage.total", total),
		),
	)
}

// RecordStageCompletion closes out a stage span and records its duration
func (pt *PipelineTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stage string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("stage.duration_seconds", duration.Seconds()))
	infrastructure.RecordStage(ctx, pt.metrics, stage, duration)

	if err != nil {
		infrastructure.RecordError(trace.ContextWithSpan(ctx, span), err)
		return
	}
	span.SetStatus(codes.Ok, "stage completed")
}

// RecordRows records the size of a table produced by the run
func (pt *PipelineTracer) RecordRows(ctx context.Context, span trace.Span, table string, rows int) {
	span.SetAttributes(attribute.Int(fmt.Sprintf("rows.%s", table), rows))
	infrastructure.RecordRows(ctx, pt.metrics, table, rows)
}

// RecordCellsParsed counts numeric cells coerced from text
func (pt *PipelineTracer) RecordCellsParsed(ctx context.Context, cells int) {
	if pt.metrics == nil {
		return
	}
	pt.metrics.CellsParsed.Add(ctx, int64(cells))
}

// RecordRunCompletion closes out the run span
func (pt *PipelineTracer) RecordRunCompletion(ctx context.Context, span trace.Span, duration time.Duration, err error) {
	errType := ""
	if err != nil {
		errType = string(errors.TypeOf(err))
		if errType == "" {
			errType = "UNKNOWN"
		}
	}
	infrastructure.RecordRun(ctx, pt.metrics, duration, errType)

	span.SetAttributes(attribute.Float64("run.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "run completed")
}
