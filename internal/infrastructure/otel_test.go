package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendasetl/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	dir := t.TempDir()
	return &config.Paths{
		BaseDir:     dir,
		TraceFile:   filepath.Join(dir, "trace.json"),
		MetricsFile: filepath.Join(dir, "vendas.prom"),
	}
}

// TestOTelDisabled tests that a default run gets working no-op providers
func TestOTelDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	paths := testPaths(t)

	providers, err := InitializeOTel(context.Background(), config.Default().Telemetry, paths, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	RecordStage(context.Background(), metrics, "load", time.Millisecond)

	require.NoError(t, providers.Shutdown(context.Background()))

	// nothing is left behind
	assert.NoFileExists(t, paths.TraceFile)
	assert.NoFileExists(t, paths.MetricsFile)
}

// TestOTelTracing tests spans are exported to the trace file
func TestOTelTracing(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	paths := testPaths(t)
	cfg := config.TelemetryConfig{
		TracingEnabled: true,
		TraceFile:      paths.TraceFile,
		SampleRatio:    1.0,
		Environment:    "test",
	}

	providers, err := InitializeOTel(context.Background(), cfg, paths, logger)
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "vendas.load")
	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	SetSpanAttributes(ctx, map[string]interface{}{"rows": 3, "file": "VendasSetembro.csv"})
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(ctx))

	content, err := os.ReadFile(paths.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "vendas.load")
	assert.Contains(t, string(content), traceID)
}

// TestOTelMetrics tests pipeline metrics end up in the textfile
func TestOTelMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	paths := testPaths(t)
	cfg := config.TelemetryConfig{
		MetricsEnabled: true,
		MetricsFile:    paths.MetricsFile,
		SampleRatio:    1.0,
	}

	providers, err := InitializeOTel(context.Background(), cfg, paths, logger)
	require.NoError(t, err)
	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.Registry)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordStage(ctx, metrics, "unpivot", 20*time.Millisecond)
	RecordRows(ctx, metrics, "monthly", 24)
	RecordRun(ctx, metrics, time.Second, "")
	RecordRun(ctx, metrics, time.Second, "PARSING")

	require.NoError(t, providers.Shutdown(ctx))

	content, err := os.ReadFile(paths.MetricsFile)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "vendas_stage_duration_seconds")
	assert.Contains(t, text, `stage="unpivot"`)
	assert.Contains(t, text, "vendas_rows_total")
	assert.Contains(t, text, `table="monthly"`)
	assert.Contains(t, text, `error_type="PARSING"`)
}

// TestOTelTracingBadPath tests an unwritable trace file fails initialization
func TestOTelTracingBadPath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	paths := testPaths(t)
	paths.TraceFile = filepath.Join(paths.BaseDir, "missing", "dir", "trace.json")

	_, err := InitializeOTel(context.Background(), config.TelemetryConfig{
		TracingEnabled: true,
		TraceFile:      paths.TraceFile,
		SampleRatio:    1.0,
	}, paths, logger)
	assert.Error(t, err)
}

// TestRecordHelpersNilMetrics tests the helpers tolerate missing instruments
func TestRecordHelpersNilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordStage(ctx, nil, "load", time.Second)
		RecordRows(ctx, nil, "summary", 1)
		RecordRun(ctx, nil, time.Second, "")
	})
	assert.Empty(t, TraceIDFromContext(ctx))
}
