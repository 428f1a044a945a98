package domain

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a person invited to a trip. The trip creator is a
// Participant with IsOwner set. Invitees have no name until they supply one.
type Participant struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Name        string
	Email       string
	IsOwner     bool
	IsConfirmed bool
	CreatedAt   time.Time
}
