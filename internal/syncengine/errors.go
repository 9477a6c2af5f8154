package syncengine

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory is the normalized delivery failure taxonomy.
type ErrorCategory string

const (
	// ErrorRejected means the adapter answered with a non-success status.
	ErrorRejected ErrorCategory = "rejected"

	// ErrorUnreachable means no answer: bad address, DNS, refused connection.
	ErrorUnreachable ErrorCategory = "unreachable"

	// ErrorTimeout means the per-target deadline passed first.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorInternal covers everything else, including a panicking transport.
	ErrorInternal ErrorCategory = "internal"
)

// DeliveryError describes why one delivery did not succeed. It is recorded
// on a Result and never returned from Save.
type DeliveryError struct {
	Category   ErrorCategory
	TargetID   string
	StatusCode int // set for ErrorRejected
	Message    string
	Underlying error
}

func (e *DeliveryError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("target %s [%s]: %s: %v", e.TargetID, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("target %s [%s]: %s", e.TargetID, e.Category, e.Message)
}

func (e *DeliveryError) Unwrap() error {
	return e.Underlying
}

// NewDeliveryError creates a categorized delivery failure.
func NewDeliveryError(category ErrorCategory, targetID, message string, underlying error) *DeliveryError {
	return &DeliveryError{
		Category:   category,
		TargetID:   targetID,
		Message:    message,
		Underlying: underlying,
	}
}

// Rejected builds the error for a non-2xx adapter response.
func Rejected(targetID string, statusCode int) *DeliveryError {
	return &DeliveryError{
		Category:   ErrorRejected,
		TargetID:   targetID,
		StatusCode: statusCode,
		Message:    StatusLine(statusCode),
	}
}

// CategoryOf extracts the category, defaulting to ErrorInternal.
func CategoryOf(err error) ErrorCategory {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Category
	}
	return ErrorInternal
}

// StatusLine renders a code the way an HTTP status line does: "503 Service Unavailable".
func StatusLine(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("%d", code)
}
