// Package parsererror defines the typed errors shared by the statement pipeline.
//
// StructuralError aborts a whole batch. FieldError is recoverable: the stage
// logs it and continues with the field's default value.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNoMessages is wrapped by a StructuralError when non-empty input holds no
// statement message at all.
var ErrNoMessages = errors.New("no statement messages found")

// StructuralError reports text the envelope tokenizer cannot turn into
// statement messages. Line is 1-based within the preprocessed text, 0 if unknown.
type StructuralError struct {
	Source  string
	Line    int
	Snippet string
	Msg     string
	Err     error
}

func (e *StructuralError) Error() string {
	where := "statement"
	if e.Source != "" {
		where = fmt.Sprintf("statement '%s'", e.Source)
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s line %d", where, e.Line)
	}

	msg := fmt.Sprintf("invalid structure in %s: %s", where, e.Msg)
	if e.Snippet != "" {
		msg = fmt.Sprintf("%s. Content snippet: '%s'", msg, e.Snippet)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// WithSource returns a copy of e naming the batch it came from.
func (e *StructuralError) WithSource(source string) *StructuralError {
	c := *e
	c.Source = source
	return &c
}

// FieldError reports one unreadable field of one record.
type FieldError struct {
	Stage string
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Stage, e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationError represents an invalid tag file or settings file.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// CategorizationError represents a failed tagging strategy.
type CategorizationError struct {
	Transaction string
	Strategy    string
	Err         error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for %s using %s: %v",
		e.Transaction, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err carries a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
