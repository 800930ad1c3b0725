package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a -log_level value to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return SeverityDebug, nil
	case "", "info":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return SeverityInfo, fmt.Errorf("unknown log level %q", s)
}

// ANSI colours for severity tags on an interactive terminal.
var severityColour = map[Severity]string{
	SeverityDebug:   "\x1b[90m",
	SeverityInfo:    "\x1b[36m",
	SeverityWarning: "\x1b[33m",
	SeverityError:   "\x1b[31m",
}

// Logger interface defines the logging contract for the checker
type Logger interface {
	// Log logs a message with the specified severity
	Log(severity Severity, msg string)

	// Logf logs a formatted message with the specified severity
	Logf(severity Severity, format string, args ...interface{})

	// Error logs an error
	Error(err error)

	// Debug logs a debug message
	Debug(msg string)

	// Info logs an info message
	Info(msg string)

	// Warning logs a warning message
	Warning(msg string)
}

// StdLogger implements the Logger interface using Go's standard logger.
// Everything goes to a single diagnostic sink so stdout stays free for the report.
type StdLogger struct {
	loggers  map[Severity]*log.Logger
	minLevel Severity
}

// NewStdLogger creates a logger writing to stderr
func NewStdLogger(minLevel Severity) *StdLogger {
	return NewStdLoggerWithWriter(os.Stderr, minLevel)
}

// NewStdLoggerWithWriter creates a logger with a custom sink.
// Severity tags are coloured only when the sink is a terminal.
func NewStdLoggerWithWriter(w io.Writer, minLevel Severity) *StdLogger {
	colour := false
	if f, ok := w.(*os.File); ok {
		colour = term.IsTerminal(int(f.Fd()))
	}

	l := &StdLogger{
		loggers:  make(map[Severity]*log.Logger, 4),
		minLevel: minLevel,
	}
	for _, sev := range []Severity{SeverityDebug, SeverityInfo, SeverityWarning, SeverityError} {
		prefix := sev.String() + ": "
		if colour {
			prefix = severityColour[sev] + sev.String() + "\x1b[0m: "
		}
		flags := 0
		if sev == SeverityDebug {
			flags = log.Ltime | log.Lshortfile
		}
		l.loggers[sev] = log.New(w, prefix, flags)
	}
	return l
}

// Log logs a message with the specified severity
func (l *StdLogger) Log(severity Severity, msg string) {
	if severity < l.minLevel {
		return
	}
	if lg, ok := l.loggers[severity]; ok {
		lg.Output(3, msg)
	}
}

// Logf logs a formatted message with the specified severity
func (l *StdLogger) Logf(severity Severity, format string, args ...interface{}) {
	l.Log(severity, fmt.Sprintf(format, args...))
}

// Error logs an error
func (l *StdLogger) Error(err error) {
	if err != nil {
		l.Log(SeverityError, err.Error())
	}
}

// Debug logs a debug message
func (l *StdLogger) Debug(msg string) {
	l.Log(SeverityDebug, msg)
}

// Info logs an info message
func (l *StdLogger) Info(msg string) {
	l.Log(SeverityInfo, msg)
}

// Warning logs a warning message
func (l *StdLogger) Warning(msg string) {
	l.Log(SeverityWarning, msg)
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Log(severity Severity, msg string)                          {}
func (l *NoOpLogger) Logf(severity Severity, format string, args ...interface{}) {}
func (l *NoOpLogger) Error(err error)                                            {}
func (l *NoOpLogger) Debug(msg string)                                           {}
func (l *NoOpLogger) Info(msg string)                                            {}
func (l *NoOpLogger) Warning(msg string)                                         {}
