package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file the processor reads or writes during a run,
// resolved to absolute paths.
type Paths struct {
	BaseDir string

	InputFile   string
	SummaryFile string
	MonthlyFile string

	// Optional outputs; empty when disabled
	ReportFile  string
	LogFile     string
	TraceFile   string
	MetricsFile string
}

// GetPaths resolves the configured file names against baseDir. An empty
// baseDir means the current working directory, which is where the export is
// dropped and where the cleaned tables are expected.
func GetPaths(cfg *Config, baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}

	p := &Paths{BaseDir: abs}
	p.InputFile = p.resolve(cfg.Input.Path)
	p.SummaryFile = p.resolve(cfg.Output.SummaryPath)
	p.MonthlyFile = p.resolve(cfg.Output.MonthlyPath)
	p.ReportFile = p.resolve(cfg.Output.ReportPath)
	if cfg.Logging.Output != "console" {
		p.LogFile = p.resolve(cfg.Logging.FilePath)
	}
	if cfg.Telemetry.TracingEnabled {
		p.TraceFile = p.resolve(cfg.Telemetry.TraceFile)
	}
	if cfg.Telemetry.MetricsEnabled {
		p.MetricsFile = p.resolve(cfg.Telemetry.MetricsFile)
	}
	return p, nil
}

// resolve makes name absolute relative to BaseDir; empty stays empty
func (p *Paths) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(p.BaseDir, name)
}

// EnsureDirectories creates the parent directories of every output file
func (p *Paths) EnsureDirectories() error {
	for _, file := range []string{p.SummaryFile, p.MonthlyFile, p.ReportFile, p.LogFile, p.TraceFile, p.MetricsFile} {
		if file == "" {
			continue
		}
		dir := filepath.Dir(file)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("input", p.InputFile),
		slog.String("summary", p.SummaryFile),
		slog.String("monthly", p.MonthlyFile),
		slog.String("report", p.ReportFile),
		slog.String("log", p.LogFile),
		slog.String("trace", p.TraceFile),
		slog.String("metrics", p.MetricsFile))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
