package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes.
const (
	CodeValidation = "E100"
	CodeStorage    = "E200"
	CodeCapture    = "E300"
	CodeState      = "E400"
)

// DefaultUserMessage is shown when an error carries no user message of its own.
const DefaultUserMessage = "Something went wrong. Please try again."

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        CodeValidation,
		Message:     msg,
		UserMessage: fmt.Sprintf("That didn't look right. %s", msg),
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewStorageError wraps a persistence failure for operation op.
func NewStorageError(op string, cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeStorage,
		Message:     fmt.Sprintf("storage error during %s: %s", op, underlyingMsg),
		UserMessage: "I couldn't save that just now. Please try again.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewCaptureError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeCapture,
		Message:     fmt.Sprintf("capture error: %s", underlyingMsg),
		UserMessage: "Couldn't capture audio. Try again.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       cause,
	}
}

func NewStateError(msg string, cause error) *AppError {
	return &AppError{
		Code:        CodeState,
		Message:     msg,
		UserMessage: "That isn't possible right now.",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       cause,
	}
}
