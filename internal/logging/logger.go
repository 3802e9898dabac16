// Package logging hides the concrete logging backend behind a small structured
// interface so pipeline stages can be tested with an in-memory logger.
package logging

// Logger is the structured logger handed to every component through its
// constructor.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a derived logger carrying err.
	WithError(err error) Logger
	// WithField returns a derived logger carrying one field.
	WithField(key string, value interface{}) Logger
	// WithFields returns a derived logger carrying all fields.
	WithFields(fields ...Field) Logger

	// Fatal logs and exits the process. Only commands call it.
	Fatal(msg string, fields ...Field)
	Fatalf(msg string, args ...interface{})
}

// Field is one key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// OrDefault returns l, or an info-level text logger when l is nil.
func OrDefault(l Logger) Logger {
	if l != nil {
		return l
	}
	return NewLogrusAdapter("info", "text")
}
