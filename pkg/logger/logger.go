// Package logger owns the process-wide zap logger. Until InitWithOptions runs
// every call is a no-op.
package logger

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global = func() *atomic.Pointer[zap.Logger] {
		p := new(atomic.Pointer[zap.Logger])
		p.Store(zap.NewNop())
		return p
	}()
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Options tune the global logger.
type Options struct {
	// Level is a zap level name; anything unparseable means info.
	Level string
	// Console switches to the coloured development encoder used by bmictl
	// and GIN_DEBUG runs.
	Console bool
}

// InitWithOptions builds and installs the global logger.
func InitWithOptions(opts Options) error {
	cfg := zap.NewProductionConfig()
	if opts.Console {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	SetLevel(opts.Level)
	cfg.Level = level

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	Replace(built)
	return nil
}

// SetLevel changes the level of the logger built by InitWithOptions without
// rebuilding it.
func SetLevel(name string) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	level.SetLevel(lvl)
}

// Replace installs l as the global logger; nil installs a no-op logger.
func Replace(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l)
}

func Logger() *zap.Logger {
	return global.Load()
}

// Sync flushes buffered entries.
func Sync() error {
	return Logger().Sync()
}

// WithModule returns the global logger tagged with module.
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}
