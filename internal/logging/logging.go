// Package logging provides the structured logger used across the commerce
// core. It wraps zap with Altis-specific helpers instead of exposing the
// global zap API directly, so call sites stay in domain language.
package logging

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with Altis-specific fields and helpers.
type Logger struct {
	*zap.Logger
	service     string
	environment string
}

// Config controls logger construction.
type Config struct {
	Level       string
	Service     string
	Environment string
	Format      string // json or console
}

type requestIDKey struct{}

// RequestIDKey is the context key used to thread a request id into loggers.
var RequestIDKey = requestIDKey{}

// New builds a Logger for the given service name.
func New(service string, opts ...Config) *Logger {
	cfg := Config{
		Level:       "info",
		Service:     service,
		Environment: getEnv("ALTIS_ENV", "development"),
		Format:      "json",
	}
	if len(opts) > 0 {
		o := opts[0]
		if o.Level != "" {
			cfg.Level = o.Level
		}
		if o.Environment != "" {
			cfg.Environment = o.Environment
		}
		if o.Format != "" {
			cfg.Format = o.Format
		}
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	base := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).With(
		zap.String("service", cfg.Service),
		zap.String("environment", cfg.Environment),
	)

	return &Logger{Logger: base, service: cfg.Service, environment: cfg.Environment}
}

// WithContext extracts a request id from ctx, if present, and binds it.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return &Logger{Logger: l.Logger.With(zap.String("request_id", id)), service: l.service, environment: l.environment}
	}
	return l
}

// WithFields returns a derived logger carrying the given structured fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return &Logger{Logger: l.Logger.With(zf...), service: l.service, environment: l.environment}
}

// OrderTransition logs a state-machine transition.
func (l *Logger) OrderTransition(orderID, from, to, event string) {
	l.Info("order transition",
		zap.String("order_id", orderID),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("event", event),
	)
}

// BreakerEvent logs a circuit breaker state change.
func (l *Logger) BreakerEvent(name, from, to string) {
	l.Warn("circuit breaker state change",
		zap.String("breaker", name),
		zap.String("from", from),
		zap.String("to", to),
	)
}

// CacheOp logs a cache operation outcome: hit/miss and duration.
func (l *Logger) CacheOp(op, key string, hit bool, duration time.Duration) {
	l.Debug("cache operation",
		zap.String("op", op),
		zap.String("key", key),
		zap.Bool("hit", hit),
		zap.Duration("duration", duration),
	)
}

// BusinessEvent logs a domain event (offer generated, settlement, etc).
func (l *Logger) BusinessEvent(eventType, eventID string, data map[string]interface{}) {
	fields := []zap.Field{
		zap.String("event_type", eventType),
		zap.String("event_id", eventID),
		zap.Time("event_time", time.Now()),
	}
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}
	l.Info("business event", fields...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
