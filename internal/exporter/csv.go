package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"vendasetl/internal/config"
	"vendasetl/internal/dataprocessing"
	"vendasetl/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	delimiter rune
	bom       bool
	logger    *slog.Logger
}

// NewCSVWriter creates a writer using the output delimiter and BOM setting of cfg
func NewCSVWriter(cfg config.OutputConfig, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	delimiter := ','
	if r := []rune(cfg.Delimiter); len(r) == 1 {
		delimiter = r[0]
	}
	return &CSVWriter{
		delimiter: delimiter,
		bom:       cfg.BOMPrefix,
		logger:    logger,
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteTable writes t with its header row and no index column. Numbers use
// a plain decimal point; null and empty cells are written as empty fields.
func (w *CSVWriter) WriteTable(ctx context.Context, path string, t *dataprocessing.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.WriteCSV(ctx, path, WriteOptions{
		Headers:   t.Header(),
		Records:   t.Records(),
		BOMPrefix: w.bom,
	})
}

// WriteCSV writes data to a CSV file with the given options. Every failure is
// a storage error.
func (w *CSVWriter) WriteCSV(ctx context.Context, filePath string, options WriteOptions) error {
	w.logger.InfoContext(ctx, "Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := w.writeCSV(filePath, options); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to write %s", filePath), err).
			WithContext("path", filePath)
	}
	return nil
}

func (w *CSVWriter) writeCSV(filePath string, options WriteOptions) (err error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	writer.Comma = w.delimiter

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
