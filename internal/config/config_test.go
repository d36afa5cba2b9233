package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "vendas.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	return configFile
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "VendasSetembro.csv", cfg.Input.Path)
				assert.Equal(t, "latin1", cfg.Input.Encoding)
				assert.Equal(t, ",", cfg.Input.Delimiter)
				assert.Equal(t, "vendas_resumo.csv", cfg.Output.SummaryPath)
				assert.Equal(t, "vendas_mensais.csv", cfg.Output.MonthlyPath)
				assert.Empty(t, cfg.Output.ReportPath)
				assert.False(t, cfg.Output.BOMPrefix)

				assert.Equal(t, []string{"Vendedor", "No_cliente", "Cliente", "Familia", "Tipo"}, cfg.Columns.Identity)
				assert.Equal(t, "Acum_ac", cfg.Columns.Current)
				assert.Equal(t, "Acum_aa", cfg.Columns.Prior)
				assert.Equal(t, "_ac", cfg.Columns.MonthlyMarker)
				assert.Equal(t, "acum", cfg.Columns.CumulativeMarker)
				assert.Len(t, cfg.Cleaning.Substitutions, 4)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.False(t, cfg.Telemetry.TracingEnabled)
				assert.False(t, cfg.Telemetry.MetricsEnabled)
			},
		},
		{
			name: "custom environment variables",
			env: map[string]string{
				"VENDAS_INPUT_PATH":        "exports/VendasOutubro.csv",
				"VENDAS_INPUT_ENCODING":    "CP850",
				"VENDAS_INPUT_DELIMITER":   ";",
				"VENDAS_OUTPUT_BOM_PREFIX": "true",
				"VENDAS_COLUMNS_IDENTITY":  "Vendedor,Cliente",
				"VENDAS_LOGGING_LEVEL":     "DEBUG",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "exports/VendasOutubro.csv", cfg.Input.Path)
				assert.Equal(t, "cp850", cfg.Input.Encoding)
				assert.Equal(t, ';', cfg.InputDelimiter())
				assert.True(t, cfg.Output.BOMPrefix)
				assert.Equal(t, []string{"Vendedor", "Cliente"}, cfg.Columns.Identity)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "config file with environment override",
			env: map[string]string{
				"VENDAS_LOGGING_LEVEL": "warn",
			},
			fileContent: `
input:
  path: dados/vendas.xlsx
  sheet: Folha1
logging:
  level: error
cleaning:
  substitutions:
    - pattern: "Ã§"
      replacement: "c"
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "dados/vendas.xlsx", cfg.Input.Path)
				assert.Equal(t, "Folha1", cfg.Input.Sheet)
				assert.Equal(t, "warn", cfg.Logging.Level)
				require.Len(t, cfg.Cleaning.Substitutions, 1)
				assert.Equal(t, Substitution{Pattern: "Ã§", Replacement: "c"}, cfg.Cleaning.Substitutions[0])
				// untouched sections keep their defaults
				assert.Equal(t, "latin1", cfg.Input.Encoding)
				assert.Equal(t, "vendas_resumo.csv", cfg.Output.SummaryPath)
			},
		},
		{
			name:    "multi-character delimiter",
			env:     map[string]string{"VENDAS_INPUT_DELIMITER": ";;"},
			wantErr: true,
		},
		{
			name: "same file for both outputs",
			env: map[string]string{
				"VENDAS_OUTPUT_SUMMARY_PATH": "out.csv",
				"VENDAS_OUTPUT_MONTHLY_PATH": "out.csv",
			},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"VENDAS_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "file logging without a path",
			env:     map[string]string{"VENDAS_LOGGING_OUTPUT": "file"},
			wantErr: true,
		},
		{
			name:    "metrics enabled without a file",
			env:     map[string]string{"VENDAS_TELEMETRY_METRICS_ENABLED": "true"},
			wantErr: true,
		},
		{
			name:    "sample ratio out of range",
			env:     map[string]string{"VENDAS_TELEMETRY_SAMPLE_RATIO": "1.5"},
			wantErr: true,
		},
		{
			name:        "empty substitution pattern",
			fileContent: "cleaning:\n  substitutions:\n    - pattern: \"\"\n      replacement: x\n",
			wantErr:     true,
		},
		{
			name:        "invalid YAML syntax",
			fileContent: "invalid: yaml: content: [unclosed",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			configFile := ""
			if tt.fileContent != "" {
				configFile = writeConfigFile(t, tt.fileContent)
			}

			cfg, err := Load(configFile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "vendas.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfig_SummaryColumns(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{
		"Vendedor", "No_cliente", "Cliente", "Familia", "Tipo",
		"Acum_ac", "Acum_aa", "Per_acum", "Crescimento",
	}, cfg.SummaryColumns())

	// SummaryColumns must not alias the identity slice
	cols := cfg.SummaryColumns()
	cols[0] = "changed"
	assert.Equal(t, "Vendedor", cfg.Columns.Identity[0])
}

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	assert.Equal(t, ',', cfg.OutputDelimiter())
}

func TestDefaultSubstitutions(t *testing.T) {
	subs := DefaultSubstitutions()
	want := map[string]string{"¢": "o", "€": "e", "å": "a", "\u0090": "i", "�": "i"}
	require.Len(t, subs, len(want))
	for _, s := range subs {
		assert.Equal(t, want[s.Pattern], s.Replacement, "pattern %q", s.Pattern)
	}

	// callers get a fresh copy each time
	subs[0].Replacement = "x"
	assert.Equal(t, "o", DefaultSubstitutions()[0].Replacement)
}

func TestConfig_Apply(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Apply(Overrides{
		InputPath:  "exports/VendasOutubro.xlsx",
		ReportPath: "reports/kpi.json",
	}))
	assert.Equal(t, "exports/VendasOutubro.xlsx", cfg.Input.Path)
	assert.Equal(t, "reports/kpi.json", cfg.Output.ReportPath)
	assert.Equal(t, DefaultSummaryFile, cfg.Output.SummaryPath)
	assert.Equal(t, DefaultMonthlyFile, cfg.Output.MonthlyPath)

	// both tables pointing at one file is rejected
	err := Default().Apply(Overrides{MonthlyPath: DefaultSummaryFile})
	assert.Error(t, err)
}
