package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoNumberAssigned indicates the target has no telephony number from the pool.
	// Recoverable by assigning a number; a blocking, non-alarming display state.
	ErrNoNumberAssigned = errors.New("no telephony number assigned")
	// ErrCarrierUnset indicates carrier selection has not been completed. All
	// forwarding transitions are blocked until it has.
	ErrCarrierUnset = errors.New("carrier not selected")
	// ErrUnknownCarrier indicates the record names a carrier the catalog does not
	// know. Treated as selection pending, never as a crash.
	ErrUnknownCarrier = errors.New("carrier not in catalog")
	// ErrUnsupportedTransition indicates the carrier offers no dial code for the
	// requested transition. Permanent for that carrier, not retryable.
	ErrUnsupportedTransition = errors.New("carrier does not offer a dial code for this transition")
	// ErrAppManagedTransition indicates the transition completes out of band through
	// the carrier's application; there is no code to confirm.
	ErrAppManagedTransition = errors.New("transition is managed through the carrier's application")
)

// RateLimitedError carries the backend's throttling response verbatim. Never
// auto-retried: blind retries of a state toggle risk double-flipping.
type RateLimitedError struct {
	Message    string
	RetryAfter time.Duration // zero when the backend gave no hint
}

func (e *RateLimitedError) Error() string {
	return e.Message
}

// RemoteError is a non-429 failure from an external collaborator, keeping the
// original human-readable server message when one was available.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream request failed with status %d", e.StatusCode)
}

// Transient reports whether the failure is worth a manual retry affordance.
func (e *RemoteError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}
