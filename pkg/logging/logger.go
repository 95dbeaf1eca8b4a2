// Package logging provides structured logging for clinicqr using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise, with
// LOG_LEVEL / LOG_FORMAT environment overrides.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("clinic_id", "SJ26-0012").Msg("minted new clinic id")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is the global logger instance.
var defaultLogger zerolog.Logger

// Nop discards all output.
var Nop = zerolog.Nop()

func init() {
	defaultLogger = NewLoggerFromConfig(DefaultConfig())
}

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum log level to output.
	Level string

	// Format is the output format (json, console, auto).
	Format string

	// Output is where to write logs (stderr, stdout, discard).
	Output string

	// NoColor disables color output in console mode.
	NoColor bool

	// AddCaller includes file:line in log output.
	AddCaller bool
}

// DefaultConfig returns a configuration with sensible defaults,
// honoring LOG_LEVEL and LOG_FORMAT environment variables.
func DefaultConfig() *Config {
	return &Config{
		Level:   envOrDefault("LOG_LEVEL", "info"),
		Format:  envOrDefault("LOG_FORMAT", "auto"),
		Output:  envOrDefault("LOG_OUTPUT", "stderr"),
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// NewLoggerFromConfig creates a new logger from configuration.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writerFor(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// Configure updates the default logger with the given configuration.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger // keep zerolog's global logger in step
}

// New creates a new logger with the given writer.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// Debug starts a new debug level log event on the default logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts a new info level log event on the default logger.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a new warning level log event on the default logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error starts a new error level log event on the default logger.
func Error() *zerolog.Event { return defaultLogger.Error() }

// Err creates a new error log event with the given error.
func Err(err error) *zerolog.Event { return defaultLogger.Err(err) }

// writerFor creates the appropriate writer for the configuration.
func writerFor(cfg *Config) io.Writer {
	var output *os.File
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
	case "discard", "none":
		return io.Discard
	default:
		output = os.Stderr
	}

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		if isTerminal(output) {
			format = "console"
		} else {
			format = "json"
		}
	}

	if format == "console" || format == "pretty" {
		return zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor,
		}
	}
	return output
}

// parseLevel parses a log level string.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "disabled", "none", "off":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	default:
		if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			return l
		}
		return zerolog.InfoLevel
	}
}

// isTerminal checks whether the file is a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// envOrDefault returns an environment variable value or a default.
func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
