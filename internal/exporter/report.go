package exporter

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"vendasetl/internal/dataprocessing"
	"vendasetl/internal/errors"
	"vendasetl/pkg/contracts"
)

// ReportFormat tags the JSON report layout
const ReportFormat = "vendas_kpi_v1"

// JSONWriter writes run reports as indented JSON
type JSONWriter struct {
	logger *slog.Logger
}

// NewJSONWriter creates a report writer
func NewJSONWriter(logger *slog.Logger) *JSONWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONWriter{logger: logger}
}

// WriteReport writes report to path with format metadata.
func (w *JSONWriter) WriteReport(ctx context.Context, path string, report *dataprocessing.RunReport) error {
	w.logger.InfoContext(ctx, "writing run report to JSON", slog.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for JSON output", err)
	}

	jsonData := map[string]interface{}{
		"format":  ReportFormat,
		"version": contracts.Version,
		"report":  report,
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create JSON file for run report", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(jsonData); err != nil {
		return errors.NewStorageError("failed to encode run report to JSON", err)
	}
	return nil
}
