package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		env    string
		expect zapcore.Level
	}{
		{"", zap.InfoLevel},
		{"INFO", zap.InfoLevel},
		{"DEBUG", zap.DebugLevel},
		{"WARN", zap.WarnLevel},
		{"ERROR", zap.ErrorLevel},
		{"debug", zap.DebugLevel},
		{"  warn  ", zap.WarnLevel},
		{"invalid", zap.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.env); got != tt.expect {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.env, got, tt.expect)
		}
	}
}

func TestLoggerOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", " Console ")

	opts := LoggerOptionsFromEnv("weather-narrator")
	if opts.Service != "weather-narrator" || opts.Level != zap.WarnLevel || opts.Format != FormatConsole {
		t.Errorf("LoggerOptionsFromEnv() = %+v, want service/warn/console", opts)
	}
}

// TestNewLogger_JSONFields verifies the JSON encoding carries service and timestamp and
// drops entries below the configured level.
func TestNewLogger_JSONFields(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")
	logger, err := NewLogger(LoggerOptions{
		Service:     "weather-narrator",
		Level:       zap.InfoLevel,
		OutputPaths: []string{out},
	})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Debug("dropped")
	logger.Info("narration complete", zap.String("city", "Seattle"))
	_ = logger.Sync()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1: %s", len(lines), data)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["service"] != "weather-narrator" {
		t.Errorf("service = %v, want weather-narrator", entry["service"])
	}
	if entry["city"] != "Seattle" {
		t.Errorf("city = %v, want Seattle", entry["city"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("entry missing timestamp")
	}
}

func TestNewLogger_Console(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.txt")
	logger, err := NewLogger(LoggerOptions{Service: "weather-narrator", Format: FormatConsole, OutputPaths: []string{out}})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Info("server starting")
	_ = logger.Sync()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "INFO") || !strings.Contains(line, "server starting") {
		t.Errorf("console line = %q, want level and message", line)
	}
	if json.Valid(data) {
		t.Errorf("console output parsed as JSON: %q", line)
	}
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	if _, err := NewLogger(LoggerOptions{Format: "xml"}); err == nil {
		t.Error("NewLogger() error = nil, want unknown format error")
	}
}
