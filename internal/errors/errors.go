package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Detail  string // diagnostic payload (attempted encodings, raw response, ...)
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err (or anything it wraps) carries the code
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Detail returns the diagnostic payload of an AppError, empty otherwise
func Detail(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Detail
	}
	return ""
}

// Error codes for the pipeline taxonomy
const (
	CodeEncodingDetection = "ENCODING_DETECTION"
	CodeSchemaInference   = "SCHEMA_INFERENCE"
	CodeConfigValidation  = "CONFIG_VALIDATION"
	CodeResponseSchema    = "RESPONSE_SCHEMA"
	CodeNarrativeClient   = "NARRATIVE_CLIENT"
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInternalError     = "INTERNAL_ERROR"
)

// EncodingDetection builds the no-candidate-decoded error; attempted
// carries the candidate list for the caller's diagnostics.
func EncodingDetection(message, attempted string) *AppError {
	return &AppError{
		Code:    CodeEncodingDetection,
		Message: message,
		Detail:  attempted,
	}
}

// SchemaInference builds the unassignable-column error
func SchemaInference(column, message string) *AppError {
	return &AppError{
		Code:    CodeSchemaInference,
		Message: fmt.Sprintf("column %q: %s", column, message),
		Detail:  column,
	}
}

// ConfigValidation builds the out-of-enum story configuration error
func ConfigValidation(cause error) *AppError {
	return &AppError{
		Code:    CodeConfigValidation,
		Message: "story configuration is invalid",
		Cause:   cause,
	}
}

// ResponseSchema builds the model-output-contract error; raw preserves
// the offending response body for diagnostics.
func ResponseSchema(message, raw string) *AppError {
	return &AppError{
		Code:    CodeResponseSchema,
		Message: message,
		Detail:  raw,
	}
}

// NarrativeClient builds the transport/auth/rate-limit error with the
// underlying cause preserved.
func NarrativeClient(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeNarrativeClient,
		Message: message,
		Cause:   cause,
	}
}

// ConfigInvalid builds an environment/application configuration error
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// InvalidInput builds a caller-input error
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
