// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// SessionKeyKey is the context key for the conversation session key
	SessionKeyKey contextKey = "session_key"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and session_key from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("request_id", requestID)),
		}
	}

	if sessionKey, ok := ctx.Value(SessionKeyKey).(string); ok && sessionKey != "" {
		newLogger = newLogger.WithSessionKey(sessionKey)
	}

	return newLogger
}

// WithSessionKey returns a logger bound to one conversation session.
func (l *Logger) WithSessionKey(sessionKey string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("session_key", sessionKey)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// DialogTurn logs one processed conversation turn.
func (l *Logger) DialogTurn(sessionKey, stage, tier string, questions int, escalate bool) {
	l.Info("dialog_turn",
		slog.String("session_key", sessionKey),
		slog.String("stage", stage),
		slog.String("tier", tier),
		slog.Int("questions", questions),
		slog.Bool("escalate", escalate),
	)
}

// StageRegression logs a suppressed backward funnel transition. These are
// diagnostics for a known historical bug class, not expected in normal runs.
func (l *Logger) StageRegression(sessionKey, from, to string, dataIndex int) {
	l.Warn("stage_regression_suppressed",
		slog.String("session_key", sessionKey),
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("lead_data_index", dataIndex),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
