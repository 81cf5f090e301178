package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logger is the process-wide logger. Components derive children with a
// "component" field so log lines can be filtered per subsystem.
var logger zerolog.Logger

// initLogger configures zerolog from LOG_LEVEL and LOG_FORMAT.
// Console output by default, JSON when LOG_FORMAT=json.
func initLogger() {
	level := zerolog.InfoLevel
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// componentLogger returns a child logger tagged with the component name.
func componentLogger(component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
