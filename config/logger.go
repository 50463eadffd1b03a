package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Logging levels accepted in configuration.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}

// Prepare returns the program logger. Messages go to stderr so cleaned
// HTML written to stdout stays untouched.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	return conf.PrepareFor(os.Stderr)
}

// PrepareFor is Prepare with an explicit destination.
func (conf *LoggingConfig) PrepareFor(out *os.File) (*zap.Logger, error) {
	var level zapcore.Level
	switch conf.Level {
	case LevelNone:
		return zap.NewNop(), nil
	case LevelNormal:
		level = zapcore.InfoLevel
	case LevelDebug:
		level = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown logging level %q", conf.Level)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(out) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(out), zap.NewAtomicLevelAt(level))
	return zap.New(core), nil
}
