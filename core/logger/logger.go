package logger

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used across the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is a typed structured logging field.
type Field = zap.Field

// Config controls logger construction.
type Config struct {
	Environment string // "debug", "development" or "production"
	LogPath     string // directory for the log file; empty disables file output
	Level       string // "debug", "info", "warn", "error"
}

// Typed field constructors, so callers never import zap directly.

func String(key, value string) Field            { return zap.String(key, value) }
func Int(key string, value int) Field           { return zap.Int(key, value) }
func Int64(key string, value int64) Field       { return zap.Int64(key, value) }
func Uint(key string, value uint) Field         { return zap.Uint(key, value) }
func Bool(key string, value bool) Field         { return zap.Bool(key, value) }
func Float64(key string, value float64) Field   { return zap.Float64(key, value) }
func Duration(key string, d time.Duration) Field { return zap.Duration(key, d) }
func Any(key string, value any) Field           { return zap.Any(key, value) }

type zapLogger struct {
	l *zap.Logger
}

// NewLogger builds a zap-backed Logger writing to stdout and, when configured,
// a rolling application log file.
func NewLogger(config Config) (Logger, error) {
	level := zapcore.InfoLevel
	switch config.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var consoleEncoder zapcore.Encoder
	if config.Environment == "production" {
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		devConfig := zap.NewDevelopmentEncoderConfig()
		devConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(devConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level),
	}

	if config.LogPath != "" {
		if err := os.MkdirAll(config.LogPath, 0o755); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(
			filepath.Join(config.LogPath, "app.log"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			0o644,
		)
		if err != nil {
			return nil, err
		}
		fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(file), level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &zapLogger{l: l}, nil
}

func (z *zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, fields...) }

func (z *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}
