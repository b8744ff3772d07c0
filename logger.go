package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogLevelNone   = "none"
	LogLevelNormal = "normal"
	LogLevelDebug  = "debug"
)

// NewLogger returns the console logger used by the optimizer: info/debug to
// stdout, warnings and errors to stderr, colored levels on a terminal.
func NewLogger(level string) (*zap.Logger, error) {
	var minLevel zapcore.Level
	switch level {
	case LogLevelNone:
		return zap.NewNop(), nil
	case LogLevelNormal, "":
		minLevel = zapcore.InfoLevel
	case LogLevelDebug:
		minLevel = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown log level '%s' (expected one of none, normal, debug)", level)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	if color.NoColor {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encoder := zapcore.NewConsoleEncoder(ec)

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return minLevel <= lvl && lvl < zapcore.WarnLevel
	})
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lowPriority),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), highPriority),
	)
	return zap.New(core), nil
}
