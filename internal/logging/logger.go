package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// ParseLevel accepts the level names in any case. An empty string maps to
// LogLevelInfo.
func ParseLevel(raw string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return LogLevelInfo, nil
	case string(LogLevelDebug):
		return LogLevelDebug, nil
	case string(LogLevelInfo):
		return LogLevelInfo, nil
	case string(LogLevelWarn), "WARNING":
		return LogLevelWarn, nil
	case string(LogLevelError):
		return LogLevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q", raw)
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// LogField represents a key-value pair in structured logging.
type LogField struct {
	Key   string
	Value any
}

// Field creates a LogField from a key-value pair.
func Field(key string, value any) LogField {
	return LogField{Key: key, Value: value}
}

// Logger provides structured logging capabilities with context support.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...LogField)
	Info(ctx context.Context, msg string, fields ...LogField)
	Warn(ctx context.Context, msg string, fields ...LogField)
	Error(ctx context.Context, msg string, err error, fields ...LogField)
	WithFields(fields ...LogField) Logger
}

// NoOpLogger is a logger that discards all log entries.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(_ context.Context, _ string, _ ...LogField)          {}
func (n *NoOpLogger) Info(_ context.Context, _ string, _ ...LogField)           {}
func (n *NoOpLogger) Warn(_ context.Context, _ string, _ ...LogField)           {}
func (n *NoOpLogger) Error(_ context.Context, _ string, _ error, _ ...LogField) {}
func (n *NoOpLogger) WithFields(_ ...LogField) Logger                           { return n }

// ZapLogger adapts a *zap.Logger to Logger. Trace IDs found in the context
// are attached as the trace_id field.
type ZapLogger struct {
	base *zap.Logger
}

// NewZapLogger writes console-encoded entries at or above minLevel to w.
// A nil writer discards everything.
func NewZapLogger(minLevel LogLevel, w io.Writer) *ZapLogger {
	if w == nil {
		return &ZapLogger{base: zap.NewNop()}
	}
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(minLevel.zapLevel()),
	)
	return &ZapLogger{base: zap.New(core)}
}

// FromZap wraps an existing zap logger.
func FromZap(base *zap.Logger) *ZapLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &ZapLogger{base: base}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.base.Sync()
}

func (z *ZapLogger) Debug(ctx context.Context, msg string, fields ...LogField) {
	z.base.Debug(msg, z.zapFields(ctx, fields)...)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, fields ...LogField) {
	z.base.Info(msg, z.zapFields(ctx, fields)...)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, fields ...LogField) {
	z.base.Warn(msg, z.zapFields(ctx, fields)...)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, err error, fields ...LogField) {
	zf := z.zapFields(ctx, fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	z.base.Error(msg, zf...)
}

func (z *ZapLogger) WithFields(fields ...LogField) Logger {
	return &ZapLogger{base: z.base.With(toZap(fields)...)}
}

func (z *ZapLogger) zapFields(ctx context.Context, fields []LogField) []zap.Field {
	zf := toZap(fields)
	if traceID := TraceID(ctx); traceID != "" {
		zf = append(zf, zap.String("trace_id", traceID))
	}
	return zf
}

func toZap(fields []LogField) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

// traceIDKey is the context key for trace IDs.
type traceIDKey struct{}

// WithTraceID adds a trace ID to the context for request correlation.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID extracts the trace ID from context, if present.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewTraceID creates a new trace ID for request correlation.
func NewTraceID() string {
	return uuid.NewString()
}
