package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"vendasetl/internal/config"
	"vendasetl/internal/dataprocessing"
	"vendasetl/internal/errors"
	"vendasetl/internal/exporter"
	"vendasetl/internal/infrastructure"
	"vendasetl/internal/validation"
	"vendasetl/pkg/contracts"
)

// options holds the flags shared by every subcommand
type options struct {
	configFile string
	baseDir    string
	overrides  config.Overrides
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and maps the outcome to an exit status
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return errors.ExitCode(err)
	}
	return errors.ExitOK
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "processor",
		Short: "Clean the monthly sales export",
		Long: `processor reads the monthly sales export (VendasSetembro.csv by default),
repairs its text, converts European numbers, and writes two tables for the
analytics store: a per-row summary with year-over-year growth
(vendas_resumo.csv) and one row per month (vendas_mensais.csv).

Settings come from vendas.yaml, a .env file and VENDAS_* environment
variables; the flags below override the file names.`,
		Version:       contracts.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.NewConfigError("invalid flags", err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: vendas.yaml, config.yaml or configs/vendas.yaml if present)")
	flags.StringVar(&opts.baseDir, "dir", "", "directory relative file names resolve against (default: working directory)")
	flags.StringVar(&opts.overrides.InputPath, "in", "", "sales export to read (.csv, .xlsx)")
	flags.StringVar(&opts.overrides.SummaryPath, "summary-out", "", "summary table to write")
	flags.StringVar(&opts.overrides.MonthlyPath, "monthly-out", "", "monthly table to write")
	root.Flags().StringVar(&opts.overrides.ReportPath, "report-out", "", "write the run KPIs as JSON to this file")

	root.AddCommand(newVerifyCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Reload the two output tables and check them",
		Long: `verify reads vendas_resumo.csv and vendas_mensais.csv back as plain decimals
and checks that growth matches the accumulated totals and that every
summary row has one monthly row per month.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}

// setup loads the configuration, resolves paths and builds the logger
func setup(opts *options, stderr io.Writer) (*config.Config, *config.Paths, *slog.Logger, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, nil, nil, errors.NewConfigError("failed to load configuration", err)
	}
	if err := cfg.Apply(opts.overrides); err != nil {
		return nil, nil, nil, errors.NewConfigError("failed to apply flags", err)
	}

	paths, err := config.GetPaths(cfg, opts.baseDir)
	if err != nil {
		return nil, nil, nil, errors.NewConfigError("failed to resolve paths", err)
	}

	if paths.LogFile != "" {
		cfg.Logging.FilePath = paths.LogFile
	}
	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return nil, nil, nil, errors.NewConfigError("failed to initialize logger", err)
	}
	slog.SetDefault(logger)
	paths.LogPathResolution(logger)

	return cfg, paths, logger, nil
}

func runClean(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	cfg, paths, logger, err := setup(opts, stderr)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.EnsureRunID(ctx)

	if err := validation.NewFileValidator(logger).ValidateRun(paths); err != nil {
		return err
	}

	providers, err := infrastructure.InitializeOTel(ctx, cfg.Telemetry, paths, logger)
	if err != nil {
		return errors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.WarnContext(ctx, "telemetry_shutdown_failed", slog.String("error", err.Error()))
		}
	}()

	tracer, err := dataprocessing.NewPipelineTracer(providers)
	if err != nil {
		return errors.NewConfigError("failed to initialize pipeline tracer", err)
	}

	cleaner, err := dataprocessing.NewCleaner(cfg, paths, dataprocessing.CleanerOptions{
		Writer:       exporter.NewCSVWriter(cfg.Output, logger),
		ReportWriter: exporter.NewJSONWriter(logger),
		Tracer:       tracer,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	result, err := cleaner.Run(ctx)
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "run_failed",
			slog.String("error_type", string(errors.TypeOf(err))),
			slog.Int("exit_code", errors.ExitCode(err)))
		return err
	}

	fmt.Fprintln(stdout, config.MsgSuccess)
	fmt.Fprintf(stdout, config.MsgFilesCreated+"\n", filepath.Base(result.SummaryFile), filepath.Base(result.MonthlyFile))
	return nil
}

func runVerify(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	cfg, paths, logger, err := setup(opts, stderr)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.EnsureRunID(ctx)

	validator := validation.NewFileValidator(logger)
	for _, file := range []string{paths.SummaryFile, paths.MonthlyFile} {
		if err := validator.ValidateFile(file); err != nil {
			return err
		}
	}

	report, err := exporter.Verify(ctx, paths.SummaryFile, paths.MonthlyFile, cfg.OutputDelimiter(), logger)
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "verify_failed",
			slog.String("error_type", string(errors.TypeOf(err))))
		return err
	}

	fmt.Fprintf(stdout, config.MsgVerified+"\n",
		filepath.Base(paths.SummaryFile), report.SummaryRows,
		filepath.Base(paths.MonthlyFile), report.MonthlyRows, len(report.Months))
	return nil
}
