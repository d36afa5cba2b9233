package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vendasetl/internal/config"
)

func TestNewLogger_File(t *testing.T) {
	defer CloseLogFile()

	logFile := filepath.Join(t.TempDir(), "logs", "processor.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	var console bytes.Buffer
	logger, err := NewLogger(cfg, &console)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}

	logger.Info("test message", "key", "value")

	// Close log file to allow reading on Windows
	CloseLogFile()

	if console.Len() != 0 {
		t.Errorf("Expected nothing on the console, got %s", console.String())
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var logEntry map[string]interface{}
	if err := json.Unmarshal(content, &logEntry); err != nil {
		t.Errorf("Log output is not valid JSON: %v", err)
	}
	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("Expected key='value', got %v", logEntry["key"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", logEntry["level"])
	}
}

func TestNewLogger_Both(t *testing.T) {
	defer CloseLogFile()

	logFile := filepath.Join(t.TempDir(), "processor.log")
	var console bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Output: "both", FilePath: logFile}, &console)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("twice")
	CloseLogFile()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "twice") || !strings.Contains(console.String(), "twice") {
		t.Errorf("Expected the line in both outputs, file=%q console=%q", content, console.String())
	}
}

func TestRunIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "json", Output: "console"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "stage finished")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	if logEntry["run_id"] != "run-123" {
		t.Errorf("Expected run_id='run-123', got %v", logEntry["run_id"])
	}

	// attributes added through With keep the injection
	buf.Reset()
	WithComponent(logger, "loader").InfoContext(ctx, "loaded")
	if !strings.Contains(buf.String(), `"run_id":"run-123"`) || !strings.Contains(buf.String(), `"component":"loader"`) {
		t.Errorf("Expected run_id and component in %s", buf.String())
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		logDebug bool
		logInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warning", false, false},
		{"error", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(config.LoggingConfig{Level: tt.level, Output: "console"}, &buf)
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}

			logger.Debug("debug line")
			logger.Info("info line")

			if got := strings.Contains(buf.String(), "debug line"); got != tt.logDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.logDebug)
			}
			if got := strings.Contains(buf.String(), "info line"); got != tt.logInfo {
				t.Errorf("info logged = %v, want %v", got, tt.logInfo)
			}
		})
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "console"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	logger.Info("plain", "rows", 3)

	if !strings.Contains(buf.String(), "msg=plain") || !strings.Contains(buf.String(), "rows=3") {
		t.Errorf("Expected text handler output, got %s", buf.String())
	}
}

func TestNewLogger_FileWithoutPath(t *testing.T) {
	defer CloseLogFile()

	_, err := NewLogger(config.LoggingConfig{Level: "info", Output: "file"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("Expected an error for file output without a path")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureRunID(context.Background())
	runID := GetRunID(ctx)
	if runID == "" {
		t.Fatal("Expected run ID to be generated")
	}

	if GetRunID(EnsureRunID(ctx)) != runID {
		t.Error("EnsureRunID changed existing run ID")
	}

	if GenerateRunID() == GenerateRunID() {
		t.Error("Expected unique run IDs")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Output: "console"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if WithError(logger, nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}

	WithError(logger, os.ErrNotExist).Info("error test")
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	if !strings.Contains(logEntry["error"].(string), "file does not exist") {
		t.Errorf("Expected error to contain 'file does not exist', got %v", logEntry["error"])
	}
}
