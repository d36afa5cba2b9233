package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vendasetl/internal/config"
	"vendasetl/internal/errors"
)

// SupportedInputExtensions lists the export formats the loader understands
var SupportedInputExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// FileValidator checks the files of a run before any stage executes, so a
// run that cannot finish fails before the export is read.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateRun checks the input export and the output directories in paths.
func (v *FileValidator) ValidateRun(paths *config.Paths) error {
	if err := v.ValidateInputFile(paths.InputFile); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, file := range []string{paths.SummaryFile, paths.MonthlyFile, paths.ReportFile} {
		if file == "" {
			continue
		}
		dir := filepath.Dir(file)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := v.ValidateOutputDirectory(dir); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInputFile checks that path is a readable export in a supported format
func (v *FileValidator) ValidateInputFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !isSupported(ext) {
		v.logger.Error("Unsupported input format",
			slog.String("file", path),
			slog.String("extension", ext))
		return errors.NewConfigError(
			fmt.Sprintf("input %s has unsupported extension %q (want one of %s)",
				path, ext, strings.Join(SupportedInputExtensions, ", ")), nil)
	}

	// Excel keeps a lock file next to an open workbook
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Error("Input is a temporary Excel file", slog.String("file", path))
		return errors.NewConfigError(fmt.Sprintf("input %s is a temporary Excel file", path), nil)
	}

	return nil
}

// ValidateFile checks that a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	if !config.FileExists(path) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return errors.NewNotFoundError(fmt.Sprintf("file %s", path), os.ErrNotExist)
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return errors.NewConfigError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists, or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	scratch, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	scratch.Close()
	os.Remove(scratch.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func isSupported(ext string) bool {
	for _, s := range SupportedInputExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
