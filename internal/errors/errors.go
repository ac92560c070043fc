package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
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

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	switch e := err.(type) {
	case *AppError:
		return e.Code
	case *HeadingConflict:
		return e.AppError.Code
	}
	return "UNKNOWN"
}

// IsCode reports whether err carries the given code
func IsCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeDuplicateHeading = "DUPLICATE_HEADING"
	CodeTableNotFound    = "TABLE_NOT_FOUND"
	CodeSessionMissing   = "SESSION_MISSING"
	CodeStorageError     = "STORAGE_ERROR"
	CodeRenderError      = "RENDER_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// ConfigInvalid creates a configuration error
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// NotFound creates a not-found error
func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

// Validation creates a validation error
func Validation(message string) *AppError {
	return New(CodeValidationError, message)
}

// DuplicateHeading flags an inspector heading that already holds data
func DuplicateHeading(heading string) *AppError {
	return New(CodeDuplicateHeading, fmt.Sprintf("%q already exists and contains data", heading))
}

// HeadingConflict is a duplicate heading rejection that keeps both
// value lists, so the form can show what the import would have
// overwritten next to what it carried.
type HeadingConflict struct {
	*AppError
	Heading string
	OldData []string
	NewData []string
}

func (e *HeadingConflict) Error() string {
	return fmt.Sprintf("%s (existing: %v, imported: %v)", e.AppError.Error(), e.OldData, e.NewData)
}

// DuplicateHeadingData builds a HeadingConflict for a spreadsheet
// column that collides with stored data.
func DuplicateHeadingData(heading string, oldData, newData []string) *HeadingConflict {
	return &HeadingConflict{
		AppError: DuplicateHeading(heading),
		Heading:  heading,
		OldData:  oldData,
		NewData:  newData,
	}
}

// TableNotFound flags a spreadsheet with no detectable table
func TableNotFound(message string) *AppError {
	return New(CodeTableNotFound, message)
}

// SessionMissing flags a request that needs session values it lacks
func SessionMissing(field string) *AppError {
	return New(CodeSessionMissing, fmt.Sprintf("%s not available", field))
}

// Storage creates a media storage error
func Storage(message string) *AppError {
	return New(CodeStorageError, message)
}

// Render creates an image rendering error
func Render(message string) *AppError {
	return New(CodeRenderError, message)
}

// UserMessage maps an error onto the message shown inline on the form.
func UserMessage(err error) string {
	switch GetCode(err) {
	case CodeNotFound:
		return "The requested object does not exist."
	case CodeValidationError:
		return "Validation error occurred."
	case CodeDuplicateHeading:
		return "A heading with this name already exists and contains data."
	case CodeTableNotFound:
		return "No table could be found in this spreadsheet."
	case CodeSessionMissing:
		return "Your session is missing required values. Please reload the page."
	case CodeStorageError:
		return "The file could not be stored. Please try again."
	case CodeRenderError:
		return "The image could not be rendered."
	case CodeUnauthorized:
		return "Permission denied: you do not have permission to perform this action."
	case CodeDatabaseError:
		return "A database error occurred."
	default:
		return "An unexpected error occurred."
	}
}
