// Package exporter writes the cleaned sales tables and reads them back.
//
// CSVWriter persists a dataprocessing.Table with its header row and no index
// column, optionally behind a UTF-8 BOM. JSONWriter stores the KPI report of a
// run. ReadSummary and ReadMonthly load the two output tables into the domain
// row types with gocsv, and Verify cross-checks them.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(cfg.Output, logger)
//	err := writer.WriteTable(ctx, paths.SummaryFile, summary)
//
//	report, err := exporter.Verify(ctx, paths.SummaryFile, paths.MonthlyFile, cfg.OutputDelimiter(), logger)
package exporter
