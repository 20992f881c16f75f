package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"contacts-api/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
)

const (
	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp   = "2006-01-02 15:04:05"
)

// Logger is the structured logger passed to every component
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// Options selects level, encoding and destination of a Logger
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT and ENVIRONMENT
func OptionsFromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		JSON:   isStructuredOutput(),
		Output: os.Stdout,
	}
}

// LogrusLogger implements Logger on a logrus entry. The leveled methods come
// from the embedded entry.
type LogrusLogger struct {
	*logrus.Entry
}

// NewLogger creates a logger configured from the environment
func NewLogger() Logger {
	return New(OptionsFromEnv())
}

// NewNop returns a logger that discards everything
func NewNop() Logger {
	return New(Options{Level: "panic", Output: io.Discard})
}

// New creates a logger from opts. Unknown levels fall back to info.
func New(opts Options) Logger {
	base := logrus.New()
	base.SetLevel(parseLevel(opts.Level))

	if opts.JSON {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: textTimestamp,
		})
	}

	if opts.Output != nil {
		base.SetOutput(opts.Output)
	} else {
		base.SetOutput(os.Stdout)
	}

	return &LogrusLogger{Entry: logrus.NewEntry(base)}
}

// WithFields returns a child logger carrying fields
func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{Entry: l.Entry.WithFields(fields)}
}

// WithComponent tags every line with the component name
func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{Entry: l.Entry.WithField("component", component)}
}

// WithContext copies request_id, component and operation out of ctx
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	fields := logrus.Fields{}
	for field, key := range contextFields {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields[field] = v
		}
	}
	return &LogrusLogger{Entry: l.Entry.WithContext(ctx).WithFields(fields)}
}

var contextFields = map[string]interface{}{
	"request_id": contextkeys.RequestIDKey,
	"component":  contextkeys.ComponentKey,
	"operation":  contextkeys.OperationKey,
}

func parseLevel(level string) logrus.Level {
	if strings.TrimSpace(level) == "" {
		return logrus.InfoLevel
	}
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

func isStructuredOutput() bool {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	return strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") || env == "production" || env == "prod"
}
