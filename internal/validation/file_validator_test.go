package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendasetl/internal/config"
	"vendasetl/internal/errors"
)

func newTestValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  errors.ErrorType
	}{
		{
			name: "csv export",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "VendasSetembro.csv")
				require.NoError(t, os.WriteFile(file, []byte("Cliente\nX\n"), 0644))
				return file
			},
		},
		{
			name: "workbook with upper case extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "Vendas.XLSX")
				require.NoError(t, os.WriteFile(file, []byte("PK"), 0644))
				return file
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantType: errors.ErrTypeNotFound,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "export.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantType: errors.ErrTypeConfig,
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "vendas.pdf")
				require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0644))
				return file
			},
			wantType: errors.ErrTypeConfig,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "~$Vendas.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("lock"), 0644))
				return file
			},
			wantType: errors.ErrTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestValidator().ValidateInputFile(tt.setupFunc(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := newTestValidator()

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out", "tables")
		require.NoError(t, v.ValidateOutputDirectory(dir))
		assert.DirExists(t, dir)

		// the write check leaves nothing behind
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("path blocked by a file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "out")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		err := v.ValidateOutputDirectory(filepath.Join(blocker, "tables"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
		assert.Equal(t, errors.ExitStorage, errors.ExitCode(err))
	})
}

func TestFileValidator_ValidateRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "VendasSetembro.csv")
	require.NoError(t, os.WriteFile(input, []byte("Cliente\nX\n"), 0644))

	paths := &config.Paths{
		BaseDir:     dir,
		InputFile:   input,
		SummaryFile: filepath.Join(dir, "out", "vendas_resumo.csv"),
		MonthlyFile: filepath.Join(dir, "out", "vendas_mensais.csv"),
		ReportFile:  filepath.Join(dir, "reports", "vendas_kpi.json"),
	}

	require.NoError(t, newTestValidator().ValidateRun(paths))
	assert.DirExists(t, filepath.Join(dir, "out"))
	assert.DirExists(t, filepath.Join(dir, "reports"))
	assert.NoFileExists(t, paths.SummaryFile)

	paths.InputFile = filepath.Join(dir, "absent.csv")
	err := newTestValidator().ValidateRun(paths)
	assert.Equal(t, errors.ExitInput, errors.ExitCode(err))
}
