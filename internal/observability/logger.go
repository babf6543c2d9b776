package observability

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log encodings accepted by LoggerOptions.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// LoggerOptions selects how the service logger encodes and where it writes.
type LoggerOptions struct {
	Service     string
	Level       zapcore.Level
	Format      string   // FormatJSON (default) or FormatConsole
	OutputPaths []string // defaults to stderr
}

// LoggerOptionsFromEnv reads LOG_LEVEL (DEBUG/INFO/WARN/ERROR, default INFO) and
// LOG_FORMAT (json/console, default json).
func LoggerOptionsFromEnv(service string) LoggerOptions {
	return LoggerOptions{
		Service: service,
		Level:   parseLogLevel(os.Getenv("LOG_LEVEL")),
		Format:  strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
	}
}

// NewLogger builds the service logger. Every entry carries the service name and an
// ISO8601 "timestamp" field regardless of encoding.
func NewLogger(opts LoggerOptions) (*zap.Logger, error) {
	var config zap.Config
	switch opts.Format {
	case "", FormatJSON:
		config = zap.NewProductionConfig()
	case FormatConsole:
		config = zap.NewDevelopmentConfig()
		config.Development = false
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(opts.Level)
	if len(opts.OutputPaths) > 0 {
		config.OutputPaths = opts.OutputPaths
	}
	if opts.Service != "" {
		config.InitialFields = map[string]interface{}{"service": opts.Service}
	}
	return config.Build()
}

func parseLogLevel(s string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zap.DebugLevel
	case "WARN":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
