package config

import (
	"io"
	"os"

	"github.com/mpapenbr/irtelemetry/log"
)

const (
	logFileMaxSizeMB  = 50
	logFileMaxBackups = 5
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the application logger from the resolved log settings
// and installs it as default logger.
func SetupLogger() (*log.Logger, error) {
	var writer io.Writer = os.Stderr
	if LogFile != "" {
		writer = log.FileWriter(LogFile, logFileMaxSizeMB, logFileMaxBackups)
	}
	var logger *log.Logger
	switch LogFormat {
	case "json":
		logger = log.New(
			writer,
			parseLogLevel(LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			writer,
			parseLogLevel(LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if LogFilter != "" {
		var err error
		if logger, err = logger.WithFilter(LogFilter); err != nil {
			return nil, err
		}
	}
	log.ResetDefault(logger)
	return logger, nil
}
