// Package logger builds the zap loggers used by the command line tools.
package logger

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Verbose bool   // Debug level on the console
	LogFile string // When not empty, every entry is also written as JSON into this file
}

// New returns a logger writing human readable entries to the standard error and, optionally,
// JSON entries to a log file. The returned function flushes and closes the file
func New(options Options) (*zap.Logger, func(), error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if options.Verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	consoleConfig := zap.NewDevelopmentEncoderConfig()
	consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stderr), level),
	}

	closeFile := func() {}
	if options.LogFile != "" {
		file, err := os.Create(options.LogFile)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "cannot create log file %v", options.LogFile)
		}
		closeFile = func() { file.Close() }

		fileConfig := zap.NewProductionEncoderConfig()
		fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), zapcore.AddSync(file), zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, func() {
		_ = logger.Sync()
		closeFile()
	}, nil
}
