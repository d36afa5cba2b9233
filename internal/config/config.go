package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "VENDAS"

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Columns   ColumnsConfig   `yaml:"columns" envconfig:"COLUMNS"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig describes the monthly sales export
type InputConfig struct {
	Path      string `yaml:"path" split_words:"true" validate:"required"`
	Encoding  string `yaml:"encoding" split_words:"true" validate:"required"`
	Delimiter string `yaml:"delimiter" split_words:"true" validate:"len=1"`
	Sheet     string `yaml:"sheet" split_words:"true"`
}

// OutputConfig describes the two cleaned tables and the optional KPI report
type OutputConfig struct {
	SummaryPath string `yaml:"summary_path" split_words:"true" validate:"required"`
	MonthlyPath string `yaml:"monthly_path" split_words:"true" validate:"required,nefield=SummaryPath"`
	ReportPath  string `yaml:"report_path" split_words:"true"`
	Delimiter   string `yaml:"delimiter" split_words:"true" validate:"len=1"`
	BOMPrefix   bool   `yaml:"bom_prefix" split_words:"true"`
}

// ColumnsConfig names the columns the cleaner relies on
type ColumnsConfig struct {
	Identity         []string `yaml:"identity" split_words:"true" validate:"min=1,dive,required"`
	Current          string   `yaml:"current" split_words:"true" validate:"required"`
	Prior            string   `yaml:"prior" split_words:"true" validate:"required"`
	PeriodShare      string   `yaml:"period_share" split_words:"true" validate:"required"`
	Growth           string   `yaml:"growth" split_words:"true" validate:"required"`
	MonthlyMarker    string   `yaml:"monthly_marker" split_words:"true" validate:"required"`
	CumulativeMarker string   `yaml:"cumulative_marker" split_words:"true" validate:"required"`
	MonthLabel       string   `yaml:"month_label" split_words:"true" validate:"required"`
	MonthValue       string   `yaml:"month_value" split_words:"true" validate:"required"`
}

// Substitution is one find-replace applied to headers and text cells.
// Pattern is a Go regular expression.
type Substitution struct {
	Pattern     string `yaml:"pattern" validate:"required"`
	Replacement string `yaml:"replacement"`
}

// CleaningConfig holds the mis-encoding repair table. It is only read from the
// config file: the order of entries matters and env vars cannot express it.
type CleaningConfig struct {
	Substitutions []Substitution `yaml:"substitutions" ignored:"true" validate:"dive"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// TelemetryConfig controls tracing and metrics. Both are off by default so a
// plain run leaves nothing behind except the two output tables.
type TelemetryConfig struct {
	TracingEnabled bool    `yaml:"tracing_enabled" split_words:"true"`
	TraceFile      string  `yaml:"trace_file" split_words:"true" validate:"required_if=TracingEnabled true"`
	SampleRatio    float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
	MetricsEnabled bool    `yaml:"metrics_enabled" split_words:"true"`
	MetricsFile    string  `yaml:"metrics_file" split_words:"true" validate:"required_if=MetricsEnabled true"`
	Environment    string  `yaml:"environment" split_words:"true"`
}

// Load builds the configuration from defaults, then the YAML file (explicit
// path or the first well-known location found), then a .env file, then
// VENDAS_* environment variables. Later sources win.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Overrides are command-line values that replace loaded settings. Empty
// fields leave the loaded value alone.
type Overrides struct {
	InputPath   string
	SummaryPath string
	MonthlyPath string
	ReportPath  string
}

// Apply sets every non-empty override on c and validates the result.
func (c *Config) Apply(o Overrides) error {
	if o.InputPath != "" {
		c.Input.Path = o.InputPath
	}
	if o.SummaryPath != "" {
		c.Output.SummaryPath = o.SummaryPath
	}
	if o.MonthlyPath != "" {
		c.Output.MonthlyPath = o.MonthlyPath
	}
	if o.ReportPath != "" {
		c.Output.ReportPath = o.ReportPath
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid command-line override: %w", err)
	}
	return nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks struct tags and normalizes a few fields
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Input.Encoding = strings.ToLower(strings.TrimSpace(c.Input.Encoding))

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}
	return nil
}

// InputDelimiter returns the input field separator as a rune
func (c *Config) InputDelimiter() rune {
	return []rune(c.Input.Delimiter)[0]
}

// OutputDelimiter returns the output field separator as a rune
func (c *Config) OutputDelimiter() rune {
	return []rune(c.Output.Delimiter)[0]
}

// SummaryColumns returns the summary projection in output order
func (c *Config) SummaryColumns() []string {
	cols := make([]string, 0, len(c.Columns.Identity)+4)
	cols = append(cols, c.Columns.Identity...)
	return append(cols, c.Columns.Current, c.Columns.Prior, c.Columns.PeriodShare, c.Columns.Growth)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"vendas.yaml",
		"config.yaml",
		"configs/vendas.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:      DefaultInputFile,
			Encoding:  DefaultEncoding,
			Delimiter: ",",
		},
		Output: OutputConfig{
			SummaryPath: DefaultSummaryFile,
			MonthlyPath: DefaultMonthlyFile,
			Delimiter:   ",",
		},
		Columns: ColumnsConfig{
			Identity:         append([]string(nil), DefaultIdentityColumns...),
			Current:          ColumnCurrentAccum,
			Prior:            ColumnPriorAccum,
			PeriodShare:      ColumnPeriodShare,
			Growth:           ColumnGrowth,
			MonthlyMarker:    DefaultMonthlyMarker,
			CumulativeMarker: DefaultCumulativeMarker,
			MonthLabel:       ColumnMonth,
			MonthValue:       ColumnValue,
		},
		Cleaning: CleaningConfig{
			Substitutions: DefaultSubstitutions(),
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: "console",
		},
		Telemetry: TelemetryConfig{
			SampleRatio: 1.0,
			Environment: "production",
		},
	}
}
