// Package logger builds the zap logger shared by every w3vault command.
package logger

import (
	"github.com/Mohsinsiddi/w3vault/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger flavour.
type Options struct {
	Env     string // config.Production selects JSON output
	Verbose bool   // debug level instead of info
	File    string // write here instead of stderr
}

// New builds a logger. Production uses the JSON encoder with ISO8601 times;
// anything else uses the coloured console encoder.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Env == config.Production {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if opts.File != "" {
		// Colour escapes are noise in a file.
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	}

	return cfg.Build()
}

// Sync flushes buffered entries, ignoring the error stderr returns on some platforms.
func Sync(l *zap.Logger) {
	_ = l.Sync()
}
