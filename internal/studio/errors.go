package studio

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrorCode identifies a structured backend failure.
type ErrorCode string

const (
	CodeNotReady            ErrorCode = "not_ready"
	CodeConflict            ErrorCode = "conflict"
	CodeInsufficientMinutes ErrorCode = "insufficient_minutes"
	CodeQuotaExceeded       ErrorCode = "quota_exceeded"
	CodePaymentRequired     ErrorCode = "payment_required"
	CodeServiceUnavailable  ErrorCode = "service_unavailable"
	CodeUnknown             ErrorCode = "unknown"
)

// APIError is a structured error returned by the backend.
type APIError struct {
	Code       ErrorCode
	StatusCode int
	Message    string

	// Minutes quota details, present on insufficient_minutes and
	// payment_required responses.
	MinutesRequired  float64
	MinutesRemaining float64
	RenewsAt         string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("studio: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("studio: request failed with %d (%s)", e.StatusCode, e.Code)
}

// CodeOf extracts the structured code from an error chain, or CodeUnknown.
func CodeOf(err error) ErrorCode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeUnknown
}

// IsNotReady reports whether the backend asked the caller to try again later.
func IsNotReady(err error) bool { return CodeOf(err) == CodeNotReady }

// IsConflict reports whether the backend rejected the call as conflicting.
func IsConflict(err error) bool { return CodeOf(err) == CodeConflict }

// IsInsufficientMinutes reports the dedicated minutes-quota submission error.
func IsInsufficientMinutes(err error) bool { return CodeOf(err) == CodeInsufficientMinutes }

// IsQuotaExceeded reports a generic quota rejection.
func IsQuotaExceeded(err error) bool { return CodeOf(err) == CodeQuotaExceeded }

// IsPaymentRequired reports a 402-equivalent precheck rejection.
func IsPaymentRequired(err error) bool { return CodeOf(err) == CodePaymentRequired }

// IsTransient reports whether an error should be silently retried during
// polling: a service-unavailable status, or the absence of any structured
// status combined with network-failure indicators.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == CodeServiceUnavailable
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
