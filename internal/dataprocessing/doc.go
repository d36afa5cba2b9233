// Package dataprocessing turns a monthly sales export into the tables the
// analytics store loads.
//
// # Architecture
//
// A Cleaner runs a fixed sequence of stages over an in-memory Table:
//
//	load → normalize → coerce → reshape → derive → project → rename → persist → report
//
// Every stage returns a new Table; none modifies its input. Any failure aborts
// the run and no later stage executes, so a failed run never leaves a partial
// monthly table next to a fresh summary.
//
// # Usage
//
//	cleaner, err := dataprocessing.NewCleaner(cfg, paths, dataprocessing.CleanerOptions{
//	    Writer: exporter.NewCSVWriter(cfg.Output, logger),
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := cleaner.Run(ctx)
//
// The stage functions (Load, NormalizeText, CoerceNumeric, Unpivot,
// ComputeGrowth, ProjectSummary, RenameForTarget, BuildReport) are exported
// and can be used on their own.
//
// # Error Handling
//
// Failures are *errors.AppError values typed by cause: DECODE for unreadable
// input, PARSING for values that are not numbers, SCHEMA for missing or
// duplicate columns and STORAGE for write failures.
package dataprocessing
