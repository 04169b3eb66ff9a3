package observability

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// initQuiet initializes the logger with stdout suppressed for the call.
func initQuiet(t *testing.T, level, format string) {
	t.Helper()
	oldStdout := os.Stdout
	_, w, _ := os.Pipe()
	os.Stdout = w
	defer func() {
		w.Close()
		os.Stdout = oldStdout
	}()

	InitLogger(level, format)
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"json_info", "info", "json"},
		{"text_info", "info", "text"},
		{"json_debug", "debug", "json"},
		{"unknown_format_falls_back_to_text", "info", "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initQuiet(t, tt.level, tt.format)
			assert.NotNil(t, logger)
			assert.Equal(t, logger, slog.Default())
		})
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown_defaults_to_info", "unknown", slog.LevelInfo},
		{"empty_defaults_to_info", "", slog.LevelInfo},
		{"case_sensitive", "DEBUG", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, logLevel(tt.input))
		})
	}
}

func TestFromContext(t *testing.T) {
	initQuiet(t, "info", "text")

	t.Run("no_context_values", func(t *testing.T) {
		assert.Equal(t, logger, FromContext(context.Background()))
	})

	t.Run("with_request_id", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		l := FromContext(ctx)
		assert.NotNil(t, l)
		assert.NotEqual(t, logger, l)
	})

	t.Run("empty_request_id_is_ignored", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "")
		assert.Equal(t, logger, FromContext(ctx))
	})

	t.Run("with_user_id", func(t *testing.T) {
		ctx := WithUserID(context.Background(), 42)
		l := FromContext(ctx)
		assert.NotNil(t, l)
		assert.NotEqual(t, logger, l)
	})

	t.Run("zero_user_id_is_ignored", func(t *testing.T) {
		ctx := WithUserID(context.Background(), 0)
		assert.Equal(t, logger, FromContext(ctx))
	})

	t.Run("fallback_when_uninitialized", func(t *testing.T) {
		savedLogger := logger
		defer func() { logger = savedLogger }()
		logger = nil

		assert.Equal(t, slog.Default(), FromContext(context.Background()))
	})
}

func TestContextTagging(t *testing.T) {
	t.Run("values_are_independent", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithRequestID(ctx, "req-1")
		ctx = WithUserID(ctx, 7)

		assert.Equal(t, "req-1", ctx.Value(requestIDKey))
		assert.Equal(t, int64(7), ctx.Value(userIDKey))
	})

	t.Run("later_value_wins", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "old")
		ctx = WithRequestID(ctx, "new")

		assert.Equal(t, "new", ctx.Value(requestIDKey))
	})
}
