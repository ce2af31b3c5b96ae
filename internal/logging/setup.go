// Package logging builds the slog handlers used by every command. Output
// defaults to stderr because stdout carries the MCP stream in stdio mode.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix marks every line of text output.
const Prefix = "deployhq-mcp"

// levelOptions is what a level name turns on. "trace" is debug output with
// caller information.
type levelOptions struct {
	level     slog.Level
	caller    bool
	timestamp bool
}

func parseLevel(logLevel string) levelOptions {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "trace":
		return levelOptions{level: slog.LevelDebug, caller: true, timestamp: true}
	case "debug":
		return levelOptions{level: slog.LevelDebug, timestamp: true}
	case "warn", "warning":
		return levelOptions{level: slog.LevelWarn}
	case "error":
		return levelOptions{level: slog.LevelError}
	default:
		return levelOptions{level: slog.LevelInfo}
	}
}

// SetupHandlerText returns a charmbracelet/log handler prefixed with the
// program name. Debug and trace levels add timestamps.
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}
	opts := parseLevel(logLevel)

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: opts.timestamp,
		ReportCaller:    opts.caller,
		Level:           log.Level(opts.level),
		Prefix:          Prefix,
	})
}

// SetupHandlerJSON returns a slog JSON handler. Trace adds source locations.
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}
	opts := parseLevel(logLevel)

	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     opts.level,
		AddSource: opts.caller,
	})
}

// SetupHandler returns a JSON handler when format is "json" and a text
// handler otherwise.
func SetupHandler(logLevel, format string, writer io.Writer) slog.Handler {
	if strings.EqualFold(format, "json") {
		return SetupHandlerJSON(logLevel, writer)
	}
	return SetupHandlerText(logLevel, writer)
}

// SetupLogger installs a handler as the slog default and returns the logger.
func SetupLogger(logLevel, format string, writer io.Writer) *slog.Logger {
	logger := slog.New(SetupHandler(logLevel, format, writer))
	slog.SetDefault(logger)
	return logger
}
