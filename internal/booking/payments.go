package booking

import (
	"context"
	"log"
)

// Payments is the payment processor seen by the booking core. Implementations
// return a non-nil error when the processor refuses the request.
type Payments interface {
	Authorize(ctx context.Context, userID, sessionID string, amount float64) error
	Charge(ctx context.Context, userID, sessionID string, amount float64) error
}

// NopPayments approves everything and only logs.
type NopPayments struct{}

func (NopPayments) Authorize(ctx context.Context, userID, sessionID string, amount float64) error {
	log.Printf("payments: authorize %.2f for session %s (user %s)", amount, sessionID, userID)
	return nil
}

func (NopPayments) Charge(ctx context.Context, userID, sessionID string, amount float64) error {
	log.Printf("payments: charge %.2f for session %s (user %s)", amount, sessionID, userID)
	return nil
}
