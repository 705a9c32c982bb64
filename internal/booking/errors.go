package booking

import (
	"errors"
	"fmt"

	"boothnow-backend/internal/store"
)

var (
	// ErrNotFound is returned when a booth, session, reservation or user is missing.
	ErrNotFound = errors.New("booking: not found")

	// ErrNotAvailable is returned when the booth is not in a claimable state.
	ErrNotAvailable = errors.New("booking: booth not available")

	// ErrNotAuthenticated is returned when no resolved user id accompanies the call.
	ErrNotAuthenticated = errors.New("booking: not authenticated")

	// ErrConflict is returned when a concurrent writer claimed the booth first
	// or the requested window overlaps an existing booking.
	ErrConflict = errors.New("booking: booth claimed concurrently")

	// ErrUnauthorized is returned when the record belongs to another user.
	ErrUnauthorized = errors.New("booking: not owned by caller")

	// ErrTransient is returned for storage or network failures. Safe to retry for reads only.
	ErrTransient = errors.New("booking: temporary failure")

	// ErrInvalidInput is returned for malformed durations or start times.
	ErrInvalidInput = errors.New("booking: invalid input")

	// ErrCancellationWindow is returned when a reservation is inside its cancellation cutoff.
	ErrCancellationWindow = errors.New("booking: too late to cancel")

	// ErrNotCancellable is returned when a reservation has already started or finished.
	ErrNotCancellable = errors.New("booking: reservation cannot be cancelled")

	// ErrPaymentDeclined is returned when the payment pre-authorisation fails.
	ErrPaymentDeclined = errors.New("booking: payment declined")
)

var domainErrors = []error{
	ErrNotFound,
	ErrNotAvailable,
	ErrNotAuthenticated,
	ErrConflict,
	ErrUnauthorized,
	ErrTransient,
	ErrInvalidInput,
	ErrCancellationWindow,
	ErrNotCancellable,
	ErrPaymentDeclined,
}

// classify maps store failures onto the booking taxonomy. Errors already in
// the taxonomy pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotAvailable):
		return "not_available"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrCancellationWindow):
		return "cancellation_window"
	case errors.Is(err, ErrNotCancellable):
		return "not_cancellable"
	case errors.Is(err, ErrPaymentDeclined):
		return "payment_declined"
	default:
		return "transient"
	}
}
