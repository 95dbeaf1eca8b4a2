// Package errors provides custom error types for the clinicqr system.
// These errors enable programmatic error checking and carry enough
// row/column/name context for operators to correct the input spreadsheet.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// Common sentinel errors for the clinicqr system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateName indicates that two records resolve to the same
	// normalized clinic name
	ErrDuplicateName = errors.New("duplicate clinic name")

	// ErrMissingColumn indicates that a required spreadsheet column is absent
	ErrMissingColumn = errors.New("missing required column")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// ValidationError represents a data-integrity failure in an input batch.
// Row is 1-based and refers to the spreadsheet row when known.
type ValidationError struct {
	Field   string
	Row     int
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Row > 0:
		return fmt.Sprintf("validation failed for %s at row %d: %s", e.Field, e.Row, e.Message)
	case e.Field != "":
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	default:
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// DuplicateNameError reports clinic names that appear more than once after
// normalization. Duplicates would corrupt clinic-id identity, so callers
// must treat this as fatal.
type DuplicateNameError struct {
	Source string // "input" or "registry"
	Names  []string
}

// Error implements the error interface
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate clinic names in %s: %s", e.Source, strings.Join(e.Names, ", "))
}

// Is implements errors.Is support
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName || target == ErrInvalidInput
}

// NewDuplicateNameError creates a new DuplicateNameError
func NewDuplicateNameError(source string, names []string) *DuplicateNameError {
	return &DuplicateNameError{Source: source, Names: names}
}

// SchemaError reports required columns missing from a tabular input.
type SchemaError struct {
	File    string
	Sheet   string
	Missing []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	where := e.File
	if e.Sheet != "" {
		where = fmt.Sprintf("%s (sheet %s)", e.File, e.Sheet)
	}
	return fmt.Sprintf("missing required column(s) in %s: %s", where, strings.Join(e.Missing, ", "))
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrMissingColumn || target == ErrInvalidInput
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(file, sheet string, missing []string) *SchemaError {
	return &SchemaError{File: file, Sheet: sheet, Missing: missing}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "xlsx", "yaml", "toml"
	File    string
	Row     int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Row > 0 {
		return fmt.Sprintf("parse error in %s file %s at row %d: %s", e.Format, e.File, e.Row, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "fetch"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDuplicateName checks if an error is a duplicate clinic name error
func IsDuplicateName(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

// IsMissingColumn checks if an error is a missing column error
func IsMissingColumn(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
