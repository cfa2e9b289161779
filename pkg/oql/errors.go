package oql

import (
	"errors"
	"fmt"
)

// ErrorCode defines standard error codes for query generation failures
type ErrorCode string

// Standard error codes
const (
	// Input validation errors
	ErrPromptTooShort    ErrorCode = "PROMPT_TOO_SHORT"
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_OUTPUT_FORMAT"

	// Value object construction errors
	ErrInvalidTag         ErrorCode = "INVALID_TAG"
	ErrInvalidBoundingBox ErrorCode = "INVALID_BOUNDING_BOX"
	ErrInvalidGeoFilter   ErrorCode = "INVALID_GEO_FILTER"
	ErrEmptyTagSet        ErrorCode = "EMPTY_TAG_SET"
	ErrInvalidElementType ErrorCode = "INVALID_ELEMENT_TYPE"

	// Query validation errors
	ErrSyntax         ErrorCode = "SYNTAX_ERROR"
	ErrAreaUnresolved ErrorCode = "AREA_UNRESOLVED"
)

// ValidationError represents a validation failure with a stable code and
// optional guidance for correcting the input.
type ValidationError struct {
	Code     ErrorCode
	Message  string
	Guidance string
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s. %s", e.Code, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new ValidationError with the given code and message
func NewError(code ErrorCode, message string) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
	}
}

// WithGuidance adds guidance information to the error
func (e *ValidationError) WithGuidance(guidance string) *ValidationError {
	e.Guidance = guidance
	return e
}

// IsCode reports whether err is a ValidationError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}
