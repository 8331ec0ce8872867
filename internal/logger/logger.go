package logger

import (
	"context"
	"encoding/hex"
	"os"
	"strings"
	"sync"

	"github.com/cyphera/cyphera-xdk/internal/constants"
	"github.com/cyphera/cyphera-xdk/pkg/xid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the global logger instance
	Log *zap.Logger = zap.NewNop()

	// base is Log without the host identity fields.
	base       = Log
	hostFields []zap.Field
	mu         sync.Mutex
)

type contextKey struct{}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level       string `json:"level"`
	Stage       string `json:"stage"`
	Service     string `json:"service"`
	EnableJSON  bool   `json:"enable_json"`
	EnableColor bool   `json:"enable_color"`
}

// InitLogger initializes the logger with the appropriate configuration
// based on the provided stage.
func InitLogger(stage string) {
	InitLoggerWithConfig(LoggerConfig{
		Level:       getEnvWithDefault("LOG_LEVEL", "info"),
		Stage:       stage,
		EnableJSON:  stage == constants.ProdEnvironment,
		EnableColor: stage != constants.ProdEnvironment,
	})
}

// InitLoggerWithConfig builds the global logger. Every entry carries the
// service and stage, plus the host identity once SetHostIdentity has run.
func InitLoggerWithConfig(config LoggerConfig) {
	if config.Service == "" {
		config.Service = constants.ServiceName
	}

	l, err := newZapConfig(config).Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	SetLogger(l)
}

func newZapConfig(config LoggerConfig) zap.Config {
	level := ParseLevel(config.Level)
	prod := config.Stage == constants.ProdEnvironment

	var zc zap.Config
	if prod || config.EnableJSON {
		// JSON for CloudWatch
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.MessageKey = "message"
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if config.EnableColor {
			zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		zc.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = prod && level > zapcore.DebugLevel
	zc.InitialFields = map[string]interface{}{
		"service": config.Service,
		"stage":   config.Stage,
	}
	return zc
}

// SetLogger replaces the global logger, keeping any host identity fields.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	Log = base.With(hostFields...)
}

// SetHostIdentity tags every later entry with the xid machine id, pid and
// the source the identity came from. A second call replaces the fields.
func SetHostIdentity(host xid.HostIdentity) {
	mu.Lock()
	defer mu.Unlock()
	hostFields = []zap.Field{
		zap.String("machine_id", hex.EncodeToString(host.MachineID[:])),
		zap.Uint16("pid", host.Pid),
		zap.String("host_source", host.Source),
	}
	Log = base.With(hostFields...)
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case constants.ErrorLevel:
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// getEnvWithDefault returns environment variable value or default
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ToContext stores a request-scoped logger in ctx.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the request-scoped logger, or the global one.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return Log
}

// Info logs a message at InfoLevel
func Info(msg string, fields ...zapcore.Field) {
	Log.Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(msg string, fields ...zapcore.Field) {
	Log.Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(msg string, fields ...zapcore.Field) {
	Log.Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(msg string, fields ...zapcore.Field) {
	Log.Warn(msg, fields...)
}

// Fatal logs a message at FatalLevel
// and then calls os.Exit(1)
func Fatal(msg string, fields ...zapcore.Field) {
	Log.Fatal(msg, fields...)
}

// With creates a child logger and adds structured context to it
func With(fields ...zapcore.Field) *zap.Logger {
	return Log.With(fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return Log.Sync()
}
