package assembly

import (
	"errors"
	"fmt"

	"podpress/internal/quota"
)

// ErrPrecheckPending blocks submission while the quota precheck is in flight.
var ErrPrecheckPending = errors.New("quota check still running, please wait")

// CreditError blocks submission on an estimated credit shortfall.
type CreditError struct {
	Shortfall quota.Shortfall
}

func (e *CreditError) Error() string {
	return fmt.Sprintf("insufficient credits: need %.0f, have %.0f", e.Shortfall.RequiredCredits, e.Shortfall.AvailableCredits)
}

// MinutesError blocks submission on the minutes-quota precheck. The details
// feed the dedicated quota dialog.
type MinutesError struct {
	MinutesRequired  float64
	MinutesRemaining float64
	RenewsAt         string
}

func (e *MinutesError) Error() string {
	return fmt.Sprintf("minutes quota exceeded: need %.1f, have %.1f remaining", e.MinutesRequired, e.MinutesRemaining)
}

// QuotaError blocks submission on an exhausted episode count or a generic
// quota rejection. It is accompanied by the billing-navigation signal.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "plan quota exceeded"
}

// ValidationError blocks only the current submission attempt.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CoverArtError blocks submission while artwork processing cannot be
// resolved; the attempt is retryable as-is.
type CoverArtError struct {
	Err error
}

func (e *CoverArtError) Error() string {
	return fmt.Sprintf("cover art not ready: %v", e.Err)
}

func (e *CoverArtError) Unwrap() error { return e.Err }
