package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the application-wide logger type, aliased to zerolog.Logger so
// other packages can depend on slackin/internal/logger alone.
type Logger = zerolog.Logger

// Event is an alias for zerolog.Event for the same reason.
type Event = zerolog.Event

// Options configures Init.
type Options struct {
	Level    string // trace|debug|info|warn|error
	Format   string // console|json
	Output   string // stdout|file|both
	FilePath string // required when Output includes "file"
}

// Init configures the global logger. Invalid settings degrade to a working
// stdout console logger with a warning rather than failing startup.
func Init(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	outputMode := strings.ToLower(strings.TrimSpace(opts.Output))
	if outputMode == "" {
		outputMode = "stdout"
	}

	writers := make([]io.Writer, 0, 2)
	deferredWarnings := make([]string, 0, 2)

	if outputMode == "stdout" || outputMode == "both" {
		writers = append(writers, formatWriter(os.Stdout, format))
	}
	if outputMode == "file" || outputMode == "both" {
		if strings.TrimSpace(opts.FilePath) == "" {
			deferredWarnings = append(deferredWarnings, "log output requires a file but no file path is set; disabling file logging")
		} else {
			file, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				deferredWarnings = append(deferredWarnings, fmt.Sprintf("failed to open log file '%s', disabling file logging: %v", opts.FilePath, err))
			} else {
				writers = append(writers, formatWriter(file, format))
			}
		}
	}
	if len(writers) == 0 {
		writers = append(writers, formatWriter(os.Stdout, "console"))
		deferredWarnings = append(deferredWarnings, "no valid log output configured, falling back to stdout console")
	}

	var output io.Writer
	if len(writers) == 1 {
		output = writers[0]
	} else {
		output = zerolog.MultiLevelWriter(writers...)
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
		deferredWarnings = append(deferredWarnings, fmt.Sprintf("invalid log level '%s', defaulting to 'info'", opts.Level))
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = log.Output(output).Level(lvl)

	for _, msg := range deferredWarnings {
		log.Warn().Msg(msg)
	}
}

func formatWriter(out io.Writer, format string) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
}

// Get returns a pointer to the configured logger instance.
func Get() *zerolog.Logger {
	return &log.Logger
}

// SetOutput changes the destination for log output. Useful for redirecting
// logs to a buffer during testing.
func SetOutput(w io.Writer) {
	log.Logger = log.Output(w)
}

// HTTPEvent logs HTTP request events with standardized fields.
func HTTPEvent(method, path string, status int, durationMs float64) *zerolog.Event {
	return log.Info().
		Str("event_category", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Float64("duration_ms", durationMs)
}

// HTTPError logs HTTP error events.
func HTTPError(method, path string, status int, err error) *zerolog.Event {
	return log.Error().
		Str("event_category", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Err(err)
}

// InviteEvent logs invite submissions. The email is logged redacted; only
// the domain part is kept.
func InviteEvent(email, outcome string) *zerolog.Event {
	return log.Info().
		Str("event_category", "invite").
		Str("email_domain", emailDomain(email)).
		Str("outcome", outcome)
}

// SlackEvent logs Slack Web API calls.
func SlackEvent(method string, durationMs float64) *zerolog.Event {
	return log.Debug().
		Str("event_category", "slack").
		Str("api_method", method).
		Float64("duration_ms", durationMs)
}

// PanicEvent logs panic recovery events.
func PanicEvent(err interface{}, stack string) *zerolog.Event {
	return log.Error().
		Str("event_category", "panic").
		Interface("error", err).
		Str("stack", stack)
}

func emailDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[at+1:]
	}
	return ""
}
