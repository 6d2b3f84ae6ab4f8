package errors

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Error types for the code navigation engine
type ErrorType string

const (
	// Source model errors
	ErrorTypeLoad  ErrorType = "load"
	ErrorTypeParse ErrorType = "parse"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Dispatch errors
	ErrorTypeUnsupportedLanguage ErrorType = "unsupported_language"
)

// LoadError represents a failure while loading a project into the source model
type LoadError struct {
	Type       ErrorType
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewLoadError creates a new load error with context
func NewLoadError(op string, err error) *LoadError {
	return &LoadError{
		Type:       ErrorTypeLoad,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error
func (e *LoadError) WithFile(path string) *LoadError {
	e.FilePath = path
	return e
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *LoadError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a parsing error
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, line, column int, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d: %v", e.FilePath, e.Line, e.Column, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewFileTooLargeError reports a file skipped because of the size limit
func NewFileTooLargeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooLarge,
		Path:       path,
		Operation:  "read",
		Underlying: fmt.Errorf("size %d exceeds limit %d", size, limit),
		Timestamp:  time.Now(),
	}
}

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) {
		return true
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// UnavailableReason distinguishes why a language cannot be served.
type UnavailableReason string

const (
	// ReasonNotInstalled means no adapter or grammar is compiled in, or the
	// language is disabled in configuration.
	ReasonNotInstalled UnavailableReason = "not_installed"
	// ReasonBroken means the adapter exists but failed to initialize.
	ReasonBroken UnavailableReason = "broken"
)

// UnsupportedLanguageError is raised at dispatch time when no working
// adapter can serve a file. It is the only error the engine surfaces.
type UnsupportedLanguageError struct {
	Type       ErrorType
	Language   string
	FilePath   string
	Reason     UnavailableReason
	Underlying error
	Timestamp  time.Time
}

// NewUnsupportedLanguageError creates a dispatch failure
func NewUnsupportedLanguageError(language string, reason UnavailableReason, err error) *UnsupportedLanguageError {
	return &UnsupportedLanguageError{
		Type:       ErrorTypeUnsupportedLanguage,
		Language:   language,
		Reason:     reason,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile records the file that triggered dispatch
func (e *UnsupportedLanguageError) WithFile(path string) *UnsupportedLanguageError {
	e.FilePath = path
	return e
}

// Error implements the error interface
func (e *UnsupportedLanguageError) Error() string {
	lang := e.Language
	if lang == "" {
		lang = "unknown"
	}
	var msg string
	switch e.Reason {
	case ReasonBroken:
		msg = fmt.Sprintf("%s support is installed but failed to load", lang)
	default:
		msg = fmt.Sprintf("%s support is not installed", lang)
	}
	if e.FilePath != "" {
		msg += " (file " + e.FilePath + ")"
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *UnsupportedLanguageError) Unwrap() error {
	return e.Underlying
}

// IsHostUnavailable reports whether err is (or wraps) an UnsupportedLanguageError.
func IsHostUnavailable(err error) bool {
	var ule *UnsupportedLanguageError
	return errors.As(err, &ule)
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
