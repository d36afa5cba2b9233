package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"vendasetl/internal/config"
	"vendasetl/internal/errors"
	"vendasetl/internal/infrastructure"
)

// TableWriter persists a cleaned table.
type TableWriter interface {
	WriteTable(ctx context.Context, path string, t *Table) error
}

// ReportWriter persists the KPI report of a run.
type ReportWriter interface {
	WriteReport(ctx context.Context, path string, report *RunReport) error
}

// CleanerOptions holds the collaborators of a Cleaner. Only Writer is required.
type CleanerOptions struct {
	Writer       TableWriter
	ReportWriter ReportWriter
	Tracer       *PipelineTracer
	Logger       *slog.Logger
}

// Result describes a finished run. Cleaned is the full source table after
// coercion and growth; Summary and Monthly are what was written.
type Result struct {
	RunID          string
	Cleaned        *Table
	Summary        *Table
	Monthly        *Table
	MonthlyColumns []string
	Report         *RunReport
	SummaryFile    string
	MonthlyFile    string
	ReportFile     string
	Duration       time.Duration
}

// Cleaner runs the stages that turn one sales export into the summary and
// monthly tables.
type Cleaner struct {
	cfg          *config.Config
	paths        *config.Paths
	subs         []Substitution
	writer       TableWriter
	reportWriter ReportWriter
	tracer       *PipelineTracer
	logger       *slog.Logger
}

// stage is one step of a run; stages execute strictly in order
type stage struct {
	id  string
	run func(ctx context.Context, s *runState) error
}

// runState is threaded through the stages of a single run
type runState struct {
	table   *Table
	monthly []string
	long    *Table
	summary *Table
	report  *RunReport
	started time.Time
}

// NewCleaner creates a cleaner for cfg writing to the files in paths.
func NewCleaner(cfg *config.Config, paths *config.Paths, opts CleanerOptions) (*Cleaner, error) {
	if cfg == nil || paths == nil {
		return nil, errors.NewAppValidationError("cleaner requires a config and resolved paths")
	}
	if opts.Writer == nil {
		return nil, errors.NewAppValidationError("cleaner requires a table writer")
	}

	subs, err := CompileSubstitutions(cfg.Cleaning.Substitutions)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer, _ = NewPipelineTracer(nil)
	}

	return &Cleaner{
		cfg:          cfg,
		paths:        paths,
		subs:         subs,
		writer:       opts.Writer,
		reportWriter: opts.ReportWriter,
		tracer:       tracer,
		logger:       infrastructure.WithComponent(logger, "cleaner"),
	}, nil
}

// Run executes every stage once. Any failure aborts the run; stages after
// the failing one do not execute.
func (c *Cleaner) Run(ctx context.Context) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	state := &runState{started: time.Now()}
	ctx, span := c.tracer.TraceRun(ctx, runID, c.paths.InputFile)
	defer span.End()

	stages := c.stages()
	attrs := []any{
		slog.String("input", c.paths.InputFile),
		slog.Int("stage_count", len(stages)),
	}
	if traceID := infrastructure.TraceIDFromContext(ctx); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	c.logger.InfoContext(ctx, "run_start", attrs...)

	for i, st := range stages {
		select {
		case <-ctx.Done():
			err := ctx.Err()
			c.logger.WarnContext(ctx, "run_cancelled", slog.String("stage", st.id))
			c.tracer.RecordRunCompletion(ctx, span, time.Since(state.started), err)
			return nil, err
		default:
		}

		if err := c.executeStage(ctx, st, i+1, len(stages), state); err != nil {
			c.tracer.RecordRunCompletion(ctx, span, time.Since(state.started), err)
			return nil, err
		}
	}

	result := &Result{
		RunID:          runID,
		Cleaned:        state.table,
		Summary:        state.summary,
		Monthly:        state.long,
		MonthlyColumns: state.monthly,
		Report:         state.report,
		SummaryFile:    c.paths.SummaryFile,
		MonthlyFile:    c.paths.MonthlyFile,
		ReportFile:     c.paths.ReportFile,
		Duration:       time.Since(state.started),
	}

	c.tracer.RecordRunCompletion(ctx, span, result.Duration, nil)
	c.logger.InfoContext(ctx, "run_completed",
		slog.Int("summary_rows", result.Summary.NumRows()),
		slog.Int("monthly_rows", result.Monthly.NumRows()),
		slog.Duration("duration", result.Duration))

	return result, nil
}

func (c *Cleaner) executeStage(ctx context.Context, st stage, number, total int, state *runState) error {
	ctx, span := c.tracer.TraceStage(ctx, st.id, number, total)
	defer span.End()

	c.logger.DebugContext(ctx, "executing_stage",
		slog.String("stage", st.id),
		slog.Int("stage_number", number),
		slog.Int("total_stages", total))

	start := time.Now()
	err := st.run(ctx, state)
	duration := time.Since(start)
	c.tracer.RecordStageCompletion(ctx, span, st.id, duration, err)

	if err != nil {
		c.logger.ErrorContext(ctx, "stage_failed",
			slog.String("stage", st.id),
			slog.String("error_type", string(errors.TypeOf(err))),
			slog.String("error", err.Error()))
		return err
	}

	attrs := []any{
		slog.String("stage", st.id),
		slog.Duration("duration", duration),
	}
	if state.table != nil {
		attrs = append(attrs, slog.Int("rows", state.table.NumRows()), slog.Int("columns", state.table.NumCols()))
	}
	c.logger.DebugContext(ctx, "stage_completed", attrs...)
	return nil
}

func (c *Cleaner) stages() []stage {
	return []stage{
		{id: "load", run: c.load},
		{id: "normalize", run: c.normalize},
		{id: "coerce", run: c.coerce},
		{id: "reshape", run: c.reshape},
		{id: "derive", run: c.derive},
		{id: "project", run: c.project},
		{id: "rename", run: c.rename},
		{id: "persist", run: c.persist},
		{id: "report", run: c.buildReport},
	}
}

func (c *Cleaner) load(ctx context.Context, s *runState) error {
	t, err := Load(ctx, c.paths.InputFile, LoadOptions{
		Encoding:  c.cfg.Input.Encoding,
		Delimiter: c.cfg.InputDelimiter(),
		Sheet:     c.cfg.Input.Sheet,
	})
	if err != nil {
		return err
	}
	s.table = t
	infrastructure.SetSpanAttributes(ctx, map[string]any{
		"source.path":    c.paths.InputFile,
		"source.columns": t.NumCols(),
		"source.sheet":   c.cfg.Input.Sheet,
	})
	c.tracer.RecordRows(ctx, trace.SpanFromContext(ctx), "source", t.NumRows())
	c.logger.InfoContext(ctx, "source_loaded",
		slog.String("path", c.paths.InputFile),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return nil
}

func (c *Cleaner) normalize(_ context.Context, s *runState) error {
	t, err := NormalizeText(s.table, c.subs)
	if err != nil {
		return err
	}
	s.table = t
	return nil
}

func (c *Cleaner) coerce(ctx context.Context, s *runState) error {
	t, err := CoerceText(s.table, c.cfg.Columns.Identity)
	if err != nil {
		return err
	}

	numeric := NumericColumns(t, c.cfg.Columns.Identity)
	parsed := countTextCells(t, numeric)
	t, err = CoerceNumeric(t, numeric)
	if err != nil {
		return err
	}
	c.tracer.RecordCellsParsed(ctx, parsed)
	c.logger.DebugContext(ctx, "numeric_columns_coerced",
		slog.Any("columns", numeric),
		slog.Int("cells_parsed", parsed))

	s.table = t
	return nil
}

func (c *Cleaner) reshape(ctx context.Context, s *runState) error {
	cols := c.cfg.Columns
	s.monthly = SelectMonthlyColumns(s.table, cols.MonthlyMarker, cols.CumulativeMarker)
	if len(s.monthly) == 0 {
		c.logger.WarnContext(ctx, "no_monthly_columns",
			slog.String("marker", cols.MonthlyMarker),
			slog.String("cumulative_marker", cols.CumulativeMarker))
	}

	long, err := Unpivot(s.table, cols.Identity, s.monthly, cols.MonthlyMarker, cols.MonthLabel, cols.MonthValue)
	if err != nil {
		return err
	}
	s.long = long
	c.logger.DebugContext(ctx, "monthly_columns_selected", slog.Any("columns", s.monthly))
	return nil
}

func (c *Cleaner) derive(_ context.Context, s *runState) error {
	cols := c.cfg.Columns
	t, err := ComputeGrowth(s.table, cols.Current, cols.Prior, cols.Growth)
	if err != nil {
		return err
	}
	s.table = t
	return nil
}

func (c *Cleaner) project(_ context.Context, s *runState) error {
	summary, err := ProjectSummary(s.table, c.cfg.SummaryColumns())
	if err != nil {
		return err
	}
	s.summary = summary
	return nil
}

func (c *Cleaner) rename(_ context.Context, s *runState) error {
	summary, err := RenameForTarget(s.summary)
	if err != nil {
		return err
	}
	long, err := RenameForTarget(s.long)
	if err != nil {
		return err
	}
	s.summary, s.long = summary, long
	return nil
}

func (c *Cleaner) persist(ctx context.Context, s *runState) error {
	if err := c.paths.EnsureDirectories(); err != nil {
		return errors.NewStorageError("failed to create output directories", err)
	}
	if err := c.writer.WriteTable(ctx, c.paths.SummaryFile, s.summary); err != nil {
		return err
	}
	if err := c.writer.WriteTable(ctx, c.paths.MonthlyFile, s.long); err != nil {
		return err
	}

	span := trace.SpanFromContext(ctx)
	c.tracer.RecordRows(ctx, span, "summary", s.summary.NumRows())
	c.tracer.RecordRows(ctx, span, "monthly", s.long.NumRows())
	return nil
}

// buildReport computes the run KPIs. They are always logged; they are only
// written, and only allowed to fail the run, when a report file is configured.
func (c *Cleaner) buildReport(ctx context.Context, s *runState) error {
	cols := c.cfg.Columns
	report, err := BuildReport(s.summary, ReportColumns{
		Customer: capitalizeFirst(config.ColumnCustomer),
		Type:     capitalizeFirst(config.ColumnType),
		Current:  capitalizeFirst(cols.Current),
		Prior:    capitalizeFirst(cols.Prior),
		Growth:   capitalizeFirst(cols.Growth),
	})
	if err != nil {
		if c.paths.ReportFile == "" {
			c.logger.WarnContext(ctx, "report_skipped", slog.String("error", err.Error()))
			return nil
		}
		return err
	}

	report.RunID = infrastructure.GetRunID(ctx)
	report.GeneratedAt = time.Now().UTC()
	report.SourceRows = s.table.NumRows()
	report.MonthlyRows = s.long.NumRows()
	report.MonthlyColumns = append([]string(nil), s.monthly...)
	s.report = report

	c.logger.InfoContext(ctx, "run_report",
		slog.Int("source_rows", report.SourceRows),
		slog.Int("monthly_rows", report.MonthlyRows),
		slog.Float64("total_acum_ac", report.TotalCurrent),
		slog.Float64("total_acum_aa", report.TotalPrior),
		slog.Any("overall_growth", report.OverallGrowth),
		slog.Int("active_clients", report.ActiveClients),
		slog.Int("prior_clients", report.PriorClients),
		slog.Float64("average_ticket", report.AverageTicket),
		slog.Float64("top_client_share", report.TopClientShare),
		slog.Int("null_growth_rows", report.NullGrowthRows))

	if c.paths.ReportFile == "" || c.reportWriter == nil {
		return nil
	}
	return c.reportWriter.WriteReport(ctx, c.paths.ReportFile, report)
}

func countTextCells(t *Table, columns []string) int {
	n := 0
	for _, name := range columns {
		col, _ := t.Column(name)
		for _, cell := range col {
			if cell.Kind == CellText {
				n++
			}
		}
	}
	return n
}
