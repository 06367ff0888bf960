// internal/common/errors/handler.go
package errors

import (
	"time"
)

// ErrorHandler classifies consumer failures and logs them in one shape.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Normalize ensures we always have a StandardError. Unknown errors are
// treated as retryable handler failures.
func (h *ErrorHandler) Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ShouldRetry reports whether a failed message is eligible for another
// attempt. Configuration errors never are.
func (h *ErrorHandler) ShouldRetry(err error) bool {
	stdErr := h.Normalize(err)
	return stdErr.Retryable && IsRetryableErrorCode(stdErr.Code)
}

// LogAttempt records a failed delivery attempt.
func (h *ErrorHandler) LogAttempt(fields map[string]interface{}, err error) {
	stdErr := h.Normalize(err)
	h.logger.Warn("Message handling failed", h.fields(fields, stdErr))
}

// LogExhausted records a message that is being dead-lettered.
func (h *ErrorHandler) LogExhausted(fields map[string]interface{}, err error) {
	stdErr := h.Normalize(err)
	h.logger.Error("Message dead-lettered", h.fields(fields, stdErr))
}

func (h *ErrorHandler) fields(base map[string]interface{}, stdErr *StandardError) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+5)
	for k, v := range base {
		out[k] = v
	}
	out["errorCode"] = string(stdErr.Code)
	out["message"] = stdErr.Message
	out["details"] = stdErr.Details
	out["retryable"] = stdErr.Retryable
	out["errorCategory"] = GetErrorCategory(stdErr.Code)
	return out
}
