package registry

import (
	"errors"
	"fmt"

	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
)

// ErrorCategory defines the normalized failure taxonomy for registry lookups.
type ErrorCategory string

const (
	// ErrorTimeout indicates the registry took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the registry returned invalid/malformed data
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorOutage indicates the registry is unavailable or the breaker is open
	ErrorOutage ErrorCategory = "provider_outage"

	// ErrorNotFound indicates the CNPJ is unknown or was rejected by the registry
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates the public quota was exceeded
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorUnsupported indicates the entity cannot be looked up (CPF)
	ErrorUnsupported ErrorCategory = "unsupported"
)

// Error wraps registry failures with normalized categorization.
type Error struct {
	Category   ErrorCategory
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("registry [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("registry [%s]: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError builds a categorized error. Timeouts, outages and rate limits are retryable.
func NewError(category ErrorCategory, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Message:    message,
		Underlying: underlying,
		Retryable: category == ErrorTimeout ||
			category == ErrorOutage ||
			category == ErrorRateLimited,
	}
}

// IsRetryable checks if an error is worth retrying later.
func IsRetryable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// CategoryOf extracts the category; uncategorized errors count as outages.
func CategoryOf(err error) ErrorCategory {
	var re *Error
	if errors.As(err, &re) {
		return re.Category
	}
	return ErrorOutage
}

// ToDomainError translates a registry failure for the HTTP layer.
func ToDomainError(err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if !errors.As(err, &re) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry lookup failed")
	}
	switch re.Category {
	case ErrorNotFound:
		return dErrors.Wrap(err, dErrors.CodeNotFound, re.Message)
	case ErrorUnsupported:
		return dErrors.Wrap(err, dErrors.CodeValidation, re.Message)
	case ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, re.Message)
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, re.Message)
	}
}
