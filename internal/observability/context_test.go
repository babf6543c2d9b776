package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc-123")
	if got := CorrelationID(ctx); got != "abc-123" {
		t.Errorf("CorrelationID() = %q, want abc-123", got)
	}
	if got := CorrelationID(context.Background()); got != "" {
		t.Errorf("CorrelationID() on empty ctx = %q, want empty", got)
	}
}

func TestLoggerFromContext_FallsBackToNop(t *testing.T) {
	if LoggerFromContext(context.Background()) == nil {
		t.Fatal("LoggerFromContext() returned nil")
	}
	l := zap.NewExample()
	if got := LoggerFromContext(WithLogger(context.Background(), l)); got != l {
		t.Error("LoggerFromContext() did not return stored logger")
	}
}
