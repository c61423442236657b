// Package logging configures the process-wide zerolog logger. Output goes
// to stderr for humans plus an append-only file under the XDG state
// directory for later inspection.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const appName = "picoforge"

// levelFor maps the -v count to a zerolog level. Zero keeps the console
// quiet apart from warnings.
func levelFor(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetupLogger installs the global logger for the given verbosity. The
// console writer always works; the log file is best effort and its absence
// only produces a warning.
func SetupLogger(verbosity int) {
	zerolog.SetGlobalLevel(levelFor(verbosity))

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}

	sink := io.Writer(console)
	path := logFilePath()
	file, err := openLogFile(path)
	if err == nil {
		sink = io.MultiWriter(console, file)
	}

	ctx := zerolog.New(sink).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Log file unavailable, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", path).Msg("Logger initialized")
}

// GetLogger returns a logger tagged with the component name.
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Timed logs the start of an operation and returns the matching completion
// callback, which records the elapsed time.
func Timed(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation finished")
	}
}

// logFilePath resolves the log destination under the XDG state directory.
// An explicit XDG_STATE_HOME wins over the resolved default.
func logFilePath() string {
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		state = xdg.StateHome
	}
	if state == "" {
		return appName + ".log"
	}
	return filepath.Join(state, appName, appName+".log")
}

// openLogFile creates the parent directory and opens the file for append.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
