// Package logflags builds the zap loggers used across hostpatch.
package logflags

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/k2io/hostpatch/config"
)

// Logger is the logger every package takes.
type Logger = *zap.SugaredLogger

// New builds a console-encoded logger that writes to cfg.File, or stderr
// when no file is set. Unknown levels fall back to info. Levels are colored
// when stderr is a terminal.
func New(cfg config.Log) (Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			level = zapcore.InfoLevel
		}
	}

	out := zapcore.AddSync(os.Stderr)
	encodeLevel := zapcore.CapitalLevelEncoder
	if cfg.File == "" && isTerminal(os.Stderr.Fd()) {
		out = zapcore.AddSync(colorable.NewColorableStderr())
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		out = zapcore.AddSync(f)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:      "timestamp",
		LevelKey:     "level",
		NameKey:      "logger",
		CallerKey:    "caller",
		MessageKey:   "message",
		EncodeLevel:  encodeLevel,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
		EncodeName:   zapcore.FullNameEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(out),
		level,
	)
	return zap.New(core, zap.AddCaller()).Sugar(), nil
}

// Patcher returns the logger handed to the code patcher. Its debug tracing is
// dropped unless patch_debug is set.
func Patcher(log Logger, cfg config.Log) Logger {
	named := log.Named("patch")
	if cfg.PatchDebug {
		return named
	}
	return named.WithOptions(zap.IncreaseLevel(zapcore.InfoLevel))
}

// Nop discards everything.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
