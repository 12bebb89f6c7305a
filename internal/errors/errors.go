package errors

import (
	stderrors "errors"
	"fmt"
)

// PickError is the structured error type for yamlpick.
// It carries enough context for logging, CLI output and protocol replies.
type PickError struct {
	// Code is the unique error code (e.g., "ERR_301_YAML_MALFORMED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Parse, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *PickError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *PickError) Unwrap() error {
	return e.Cause
}

// Is matches another PickError by code.
func (e *PickError) Is(target error) bool {
	if t, ok := target.(*PickError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *PickError) WithDetail(key, value string) *PickError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *PickError) WithSuggestion(suggestion string) *PickError {
	e.Suggestion = suggestion
	return e
}

// New creates a new PickError. Category and severity are derived from the code.
func New(code string, message string, cause error) *PickError {
	return &PickError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a PickError from an existing error, reusing its message.
func Wrap(code string, err error) *PickError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *PickError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ReadError reports a file that could not be read. The file is skipped.
func ReadError(path string, cause error) *PickError {
	return New(ErrCodeFileRead, fmt.Sprintf("cannot read %s", path), cause).
		WithDetail("path", path)
}

// WriteError reports a file that could not be written.
func WriteError(path string, cause error) *PickError {
	return New(ErrCodeFileWrite, fmt.Sprintf("cannot write %s", path), cause).
		WithDetail("path", path)
}

// ParseError reports malformed YAML. The file is skipped.
func ParseError(path string, cause error) *PickError {
	return New(ErrCodeYAMLMalformed, fmt.Sprintf("cannot parse %s", path), cause).
		WithDetail("path", path)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *PickError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *PickError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first PickError in err's chain.
func As(err error) (*PickError, bool) {
	var pe *PickError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if pe, ok := As(err); ok {
		return pe.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code, or "" when err is not a PickError.
func GetCode(err error) string {
	if pe, ok := As(err); ok {
		return pe.Code
	}
	return ""
}

// GetCategory extracts the category, or "" when err is not a PickError.
func GetCategory(err error) Category {
	if pe, ok := As(err); ok {
		return pe.Category
	}
	return ""
}
