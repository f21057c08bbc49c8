package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	initOnce sync.Once
	logger   *slog.Logger
	exitFunc = os.Exit

	zapOnce   sync.Once
	zapLogger *zap.Logger
)

// L returns the shared application logger, initializing it on first use.
func L() *slog.Logger {
	initOnce.Do(func() {
		logger = slog.New(newHandler())
	})
	return logger
}

func newHandler() slog.Handler {
	level := parseLevel(os.Getenv("BOOSTER_LOG_LEVEL"))
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: strings.EqualFold(os.Getenv("BOOSTER_LOG_SOURCE"), "true"),
	}

	if isJSONFormat(os.Getenv("BOOSTER_LOG_FORMAT")) {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	// Text handler writes to stderr so JSON output remains clean if enabled later.
	return slog.NewTextHandler(os.Stderr, opts)
}

func isJSONFormat(value string) bool {
	switch strings.ToLower(value) {
	case "json", "structured":
		return true
	default:
		return false
	}
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Zap returns the zap logger used by the HTTP access log middleware.
// It honours the same BOOSTER_LOG_* settings as L.
func Zap() *zap.Logger {
	zapOnce.Do(func() {
		zapLogger = newZap()
	})
	return zapLogger
}

func newZap() *zap.Logger {
	var cfg zap.Config
	if isJSONFormat(os.Getenv("BOOSTER_LOG_FORMAT")) {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(parseLevel(os.Getenv("BOOSTER_LOG_LEVEL"))))
	cfg.DisableCaller = !strings.EqualFold(os.Getenv("BOOSTER_LOG_SOURCE"), "true")
	cfg.DisableStacktrace = true

	built, err := cfg.Build()
	if err != nil {
		L().Warn("zap logger unavailable, access logs disabled", "error", err)
		return zap.NewNop()
	}
	return built
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// With returns a child logger with additional attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

// Fatal logs the message at error level and exits with status 1.
func Fatal(msg string, args ...any) {
	L().Error(msg, args...)
	exitFunc(1)
}
