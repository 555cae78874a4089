// Package logger holds the process-wide zap logger of the provisioning console.
//
// Before Init every helper writes to a no-op logger, so packages can log from
// tests without setup. Components take a child via Named.
//
// Import Path: hostconsole.io/provisioning/internal/pkg/logger
package logger

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is attached to every entry written after Init.
const Service = "provisioning-console"

var (
	current atomic.Pointer[zap.Logger]
	nop     = zap.NewNop()
)

// Init builds the process logger from the log.level and log.format settings
// and installs it. Calling Init again replaces the previous logger.
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg, err := configFor(format)
	if err != nil {
		return err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(
		zap.AddCallerSkip(1),
		zap.Fields(zap.String("service", Service)),
	)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	current.Store(l)
	return nil
}

func configFor(format string) (zap.Config, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "":
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg, nil
	case "console":
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg, nil
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", format)
	}
}

// Replace installs l and returns a func restoring the previous logger.
// A nil l silences logging.
func Replace(l *zap.Logger) (restore func()) {
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

func get() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return nop
}

// Named returns a child logger for a component.
func Named(component string) *zap.Logger {
	return get().WithOptions(zap.AddCallerSkip(-1)).Named(component)
}

func Debug(msg string, fields ...zap.Field) { get().Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { get().Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { get().Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { get().Error(msg, fields...) }

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() error {
	l := current.Load()
	if l == nil {
		return nil
	}
	if err := l.Sync(); err != nil && !isTerminalSyncError(err) {
		return err
	}
	return nil
}

func isTerminalSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "inappropriate ioctl for device") ||
		strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "bad file descriptor")
}
