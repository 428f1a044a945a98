package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrAlreadyConfirmed is returned when a trip or participant has already
// crossed the one-way confirmation latch. Handlers should map this to HTTP 409.
var ErrAlreadyConfirmed = errors.New("already confirmed")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. destination too short, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrTransport wraps any failure reported by the mail gateway.
var ErrTransport = errors.New("mail transport error")

// DeliveryFailure records one notification that could not be handed to the
// mail transport after all retries.
type DeliveryFailure struct {
	ParticipantID uuid.UUID
	Email         string
	Err           error
}

// NotificationError is returned when a state change was committed but one or
// more of the notifications that follow it failed. The state change is NOT
// rolled back; callers receive the trip ID so they can report it.
// Handlers should map this to HTTP 502.
type NotificationError struct {
	TripID   uuid.UUID
	Failures []DeliveryFailure
	// Cause combines every failure's error.
	Cause error
}

func (e *NotificationError) Error() string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.ParticipantID.String()
	}
	return fmt.Sprintf("trip %s: %d notification(s) failed for participants [%s]",
		e.TripID, len(e.Failures), strings.Join(ids, ", "))
}

// Unwrap exposes ErrTransport so errors.Is(err, ErrTransport) holds.
func (e *NotificationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Cause}
}
