package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const serviceName = "partsdesk"

// ObservabilityLogger provides structured logging using logrus
type ObservabilityLogger struct {
	logger *logrus.Logger
	file   *os.File
}

// Component constants for consistent labeling
const (
	ComponentParser   = "parser"
	ComponentRenderer = "chat_renderer"
	ComponentServer   = "http_server"
	ComponentConfig   = "configuration"
	ComponentAccess   = "access_control"
)

// Category constants for log classification
const (
	CategoryRequest        = "request"
	CategoryTransformation = "transformation"
	CategorySuccess        = "success"
	CategoryWarning        = "warning"
	CategoryError          = "error"
	CategoryValidation     = "validation"
	CategoryBlocked        = "blocked"
)

// Options controls where and how log lines are written
type Options struct {
	Level  Level
	Format string // "json" or "text"
	Dir    string // empty means stdout
}

// NewObservabilityLogger creates a structured logger writing to Dir/partsdesk.jsonl,
// or to stdout when no directory is configured
func NewObservabilityLogger(opts Options) (*ObservabilityLogger, error) {
	var out io.Writer = os.Stdout
	var file *os.File

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, err
		}

		logPath := filepath.Join(opts.Dir, serviceName+".jsonl")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		out = f
		file = f
	}

	return &ObservabilityLogger{
		logger: newLogrus(out, opts),
		file:   file,
	}, nil
}

// NewWithWriter builds a logger over an arbitrary writer; used by tests
func NewWithWriter(w io.Writer, opts Options) *ObservabilityLogger {
	return &ObservabilityLogger{logger: newLogrus(w, opts)}
}

// NewNop returns a logger that discards everything
func NewNop() *ObservabilityLogger {
	return NewWithWriter(io.Discard, Options{Level: ERROR})
}

func newLogrus(w io.Writer, opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	if opts.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}
	l.SetLevel(opts.Level.logrusLevel())
	return l
}

// Close closes the log file
func (o *ObservabilityLogger) Close() error {
	if o.file != nil {
		return o.file.Close()
	}
	return nil
}

// createEntry creates a logrus entry with standard fields
func (o *ObservabilityLogger) createEntry(component, category, requestID string, fields map[string]interface{}) *logrus.Entry {
	entry := o.logger.WithFields(logrus.Fields{
		"service":   serviceName,
		"component": component,
		"category":  category,
	})

	if requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}

	if fields != nil {
		entry = entry.WithFields(fields)
	}

	return entry
}

// Debug logs a debug message
func (o *ObservabilityLogger) Debug(component, category, requestID, message string, fields map[string]interface{}) {
	o.createEntry(component, category, requestID, fields).Debug(message)
}

// Info logs an info message
func (o *ObservabilityLogger) Info(component, category, requestID, message string, fields map[string]interface{}) {
	o.createEntry(component, category, requestID, fields).Info(message)
}

// Warn logs a warning message
func (o *ObservabilityLogger) Warn(component, category, requestID, message string, fields map[string]interface{}) {
	o.createEntry(component, category, requestID, fields).Warn(message)
}

// Error logs an error message
func (o *ObservabilityLogger) Error(component, category, requestID, message string, fields map[string]interface{}) {
	o.createEntry(component, category, requestID, fields).Error(message)
}

// Request logs request-related events
func (o *ObservabilityLogger) Request(requestID, message string, fields map[string]interface{}) {
	o.Info(ComponentServer, CategoryRequest, requestID, message, fields)
}

// Extraction logs the outcome of one table extraction attempt
func (o *ObservabilityLogger) Extraction(requestID, messageID string, trace map[string]interface{}) {
	fields := make(map[string]interface{}, len(trace)+1)
	for k, v := range trace {
		fields[k] = v
	}
	fields["message_id"] = messageID

	if trace["outcome"] == "table" {
		o.Info(ComponentParser, CategoryTransformation, requestID, "Extracted parts table", fields)
		return
	}
	o.Debug(ComponentParser, CategoryTransformation, requestID, "No parts table extracted", fields)
}

// Blocked logs a request refused by the role gate
func (o *ObservabilityLogger) Blocked(requestID, role, module string) {
	o.Warn(ComponentAccess, CategoryBlocked, requestID, "Role not allowed", map[string]interface{}{
		"role":   role,
		"module": module,
	})
}
