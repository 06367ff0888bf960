// Package errors provides the standardized error taxonomy for the complaint
// submission path and the consumer groups.
package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodeLookupFailed          ErrorCode = "LOOKUP_FAILED"
	ErrCodeRecordCreationFailed  ErrorCode = "RECORD_CREATION_FAILED"
	ErrCodeCaseNumberMissing     ErrorCode = "CASE_NUMBER_MISSING"
	ErrCodePublishFailed         ErrorCode = "PUBLISH_FAILED"
	ErrCodeConsumerHandlerFailed ErrorCode = "CONSUMER_HANDLER_FAILED"
	ErrCodeConfigurationMissing  ErrorCode = "CONFIGURATION_MISSING"
	ErrCodeWorkflowCallFailed    ErrorCode = "WORKFLOW_CALL_FAILED"
	ErrCodeIndexingFailed        ErrorCode = "INDEXING_FAILED"
	ErrCodeTrackingNotFound      ErrorCode = "TRACKING_NOT_FOUND"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError reports malformed input at the entry boundary.
func NewValidationError(details string, fieldErrors []string) *StandardError {
	e := &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Complaint submission failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	if len(fieldErrors) > 0 {
		e.WithMetadata("fields", fieldErrors)
	}
	return e
}

// NewLookupError is recovered locally by the enricher and never surfaced.
func NewLookupError(err error) *StandardError {
	return newError(ErrCodeLookupFailed, "Customer lookup failed", err, false)
}

func NewRecordCreationError(err error) *StandardError {
	return newError(ErrCodeRecordCreationFailed, "Case-management record creation failed", err, false)
}

// NewCaseNumberMissingError is returned when a created record carries no
// identifiable case number under any of the checked keys.
func NewCaseNumberMissingError(checked []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCaseNumberMissing,
		Message:   "Created record has no case number",
		Details:   "checked keys: " + strings.Join(checked, ", "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewPublishError(topic string, err error) *StandardError {
	return newError(ErrCodePublishFailed, "Event publication failed", err, false).
		WithMetadata("topic", topic)
}

// NewConsumerHandlerError wraps a failure inside a consumer handler. These
// are retried by the consumer group runner.
func NewConsumerHandlerError(taskType string, err error) *StandardError {
	return newError(ErrCodeConsumerHandlerFailed, "Consumer handler failed", err, true).
		WithMetadata("taskType", taskType)
}

// NewConfigurationError reports a missing endpoint or credential. The call
// that needed it fails immediately without retry.
func NewConfigurationError(setting string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationMissing,
		Message:   "Required configuration is missing",
		Details:   setting,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewWorkflowCallError(err error) *StandardError {
	return newError(ErrCodeWorkflowCallFailed, "Workflow automation call failed", err, true)
}

func NewIndexingError(err error) *StandardError {
	return newError(ErrCodeIndexingFailed, "Search index write failed", err, true)
}

func NewTrackingNotFoundError(trackingID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrackingNotFound,
		Message:   "Tracking id not found",
		Details:   fmt.Sprintf("trackingId: %s", trackingID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if goerrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first StandardError in err's chain, or
// ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// GetRetryCount returns how many retries a consumer applies for the code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeConsumerHandlerFailed,
		ErrCodeWorkflowCallFailed,
		ErrCodeIndexingFailed,
		ErrCodeInternal:
		return 3
	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed:
		return "VALIDATION"
	case ErrCodeLookupFailed:
		return "LOOKUP"
	case ErrCodeRecordCreationFailed, ErrCodeCaseNumberMissing:
		return "RECORD_CREATION"
	case ErrCodePublishFailed:
		return "PUBLISH"
	case ErrCodeConsumerHandlerFailed, ErrCodeWorkflowCallFailed, ErrCodeIndexingFailed:
		return "CONSUMER"
	case ErrCodeConfigurationMissing:
		return "CONFIGURATION"
	default:
		return "OTHER"
	}
}
