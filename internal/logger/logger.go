// Package logger provides leveled structured logging.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Logger provides leveled logging.
type Logger struct {
	level  Level
	logger zerolog.Logger
}

var defaultLogger *Logger

// ParseLevel maps a config level name to a Level. Unknown names are InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Init initializes the default logger with the specified level and format.
// format "text" writes human-readable lines; anything else writes JSON.
func Init(level string, format string) {
	InitWriter(os.Stderr, level, format)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level string, format string) {
	l := ParseLevel(level)

	out := w
	if strings.ToLower(format) == "text" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	defaultLogger = &Logger{
		level:  l,
		logger: zerolog.New(out).Level(zerologLevel(l)).With().Timestamp().Logger(),
	}
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Zerolog returns the underlying logger for components that log fields.
// Before Init it discards everything.
func Zerolog() zerolog.Logger {
	if defaultLogger == nil {
		return zerolog.Nop()
	}
	return defaultLogger.logger
}

func Debug(format string, args ...interface{}) {
	if defaultLogger != nil && defaultLogger.level <= DebugLevel {
		defaultLogger.logger.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

func Info(format string, args ...interface{}) {
	if defaultLogger != nil && defaultLogger.level <= InfoLevel {
		defaultLogger.logger.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(format string, args ...interface{}) {
	if defaultLogger != nil && defaultLogger.level <= WarnLevel {
		defaultLogger.logger.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(format string, args ...interface{}) {
	if defaultLogger != nil && defaultLogger.level <= ErrorLevel {
		defaultLogger.logger.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Fatal(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.logger.WithLevel(zerolog.FatalLevel).Msg(fmt.Sprintf(format, args...))
	}
	os.Exit(1)
}
