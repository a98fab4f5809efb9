package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig           ErrorType = "config"
	ErrorTypeTemplateNotFound ErrorType = "template_not_found"
	ErrorTypeInheritanceCycle ErrorType = "inheritance_cycle"
	ErrorTypeMetadata         ErrorType = "metadata"
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeRender           ErrorType = "render"
	ErrorTypeIO               ErrorType = "io"
	ErrorTypeInternal         ErrorType = "internal"
)

// Error is a structured error type with context.
type Error struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
	Template string
	FilePath string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Template != "" {
		parts = append(parts, "template:"+e.Template)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison on type and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && (t.Code == "" || e.Code == t.Code)
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithTemplate adds template context.
func (e *Error) WithTemplate(name string) *Error {
	e.Template = name

	return e
}

// WithFile adds file location context.
func (e *Error) WithFile(path string) *Error {
	e.FilePath = path

	return e
}

// Error creation functions

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewTemplateNotFoundError creates a template resolution error.
func NewTemplateNotFoundError(name string, cause error) *Error {
	return &Error{
		Type:     ErrorTypeTemplateNotFound,
		Code:     ErrCodeTemplateNotFound,
		Message:  "template not found: " + name,
		Cause:    cause,
		Template: name,
	}
}

// NewInheritanceCycleError creates an error for a template chain that
// revisits itself.
func NewInheritanceCycleError(name string, chain []string) *Error {
	return &Error{
		Type:     ErrorTypeInheritanceCycle,
		Code:     ErrCodeInheritanceCycle,
		Message:  fmt.Sprintf("inheritance cycle detected: %s (chain: %s)", name, strings.Join(chain, " -> ")),
		Template: name,
	}
}

// NewMetadataError creates a provenance metadata parse error.
func NewMetadataError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeMetadata,
		Code:    code,
		Message: message,
	}
}

// NewRenderError creates a rendering error.
func NewRenderError(name, message string, cause error) *Error {
	return &Error{
		Type:     ErrorTypeRender,
		Code:     ErrCodeRenderFailed,
		Message:  message,
		Cause:    cause,
		Template: name,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternal,
		Message: message,
		Cause:   cause,
	}
}

// Classification helpers

// IsType checks whether err is a structured error of the given type.
func IsType(err error, t ErrorType) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Type == t
	}

	return false
}

// IsTemplateNotFound checks if an error is a template resolution failure.
func IsTemplateNotFound(err error) bool {
	return IsType(err, ErrorTypeTemplateNotFound)
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool {
	return IsType(err, ErrorTypeConfig)
}

// IsMetadataError checks if an error is a provenance metadata failure.
func IsMetadataError(err error) bool {
	return IsType(err, ErrorTypeMetadata)
}

// Common error codes.
const (
	ErrCodeConfigNotFound    = "ERR_CONFIG_NOT_FOUND"
	ErrCodeConfigSyntax      = "ERR_CONFIG_SYNTAX"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeTemplateNotFound  = "ERR_TEMPLATE_NOT_FOUND"
	ErrCodeInheritanceCycle  = "ERR_INHERITANCE_CYCLE"
	ErrCodeMetadataNoPairs   = "ERR_METADATA_NO_PAIRS"
	ErrCodeMetadataMissing   = "ERR_METADATA_MISSING_FIELD"
	ErrCodeMetadataInvalid   = "ERR_METADATA_INVALID_VALUE"
	ErrCodeRenderFailed      = "ERR_RENDER_FAILED"
	ErrCodeIORead            = "ERR_IO_READ"
	ErrCodeIOWrite           = "ERR_IO_WRITE"
	ErrCodeValidationFailed  = "ERR_VALIDATION_FAILED"
	ErrCodeInvalidIdentifier = "ERR_INVALID_IDENTIFIER"
	ErrCodeInternal          = "ERR_INTERNAL"
)

// ValidationErrors collects missing or invalid context fields so a single
// failure names every offending field, not just the first.
type ValidationErrors struct {
	Missing []string
	Invalid map[string]string
}

// Error implements the error interface.
func (ve *ValidationErrors) Error() string {
	var parts []string

	if len(ve.Missing) > 0 {
		missing := append([]string(nil), ve.Missing...)
		sort.Strings(missing)
		parts = append(parts, "missing required fields: "+strings.Join(missing, ", "))
	}

	if len(ve.Invalid) > 0 {
		keys := make([]string, 0, len(ve.Invalid))
		for k := range ve.Invalid {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("invalid field %s: %s", k, ve.Invalid[k]))
		}
	}

	if len(parts) == 0 {
		return "no validation errors"
	}

	return strings.Join(parts, "; ")
}

// AddMissing records a required field that was absent or nil.
func (ve *ValidationErrors) AddMissing(field string) {
	ve.Missing = append(ve.Missing, field)
}

// AddInvalid records a field whose value failed validation.
func (ve *ValidationErrors) AddInvalid(field, reason string) {
	if ve.Invalid == nil {
		ve.Invalid = make(map[string]string)
	}
	ve.Invalid[field] = reason
}

// HasErrors returns true if any field failed validation.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Missing) > 0 || len(ve.Invalid) > 0
}

// ToError converts the collection into a structured validation error, or nil
// when the collection is empty.
func (ve *ValidationErrors) ToError() *Error {
	if !ve.HasErrors() {
		return nil
	}

	err := &Error{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeValidationFailed,
		Message: ve.Error(),
	}
	if len(ve.Missing) > 0 {
		err = err.WithContext("missing", append([]string(nil), ve.Missing...))
	}

	return err
}
