// Package domain contains the core data types for the trip planner.
// This package has no infrastructure dependencies and is imported by every
// other internal package (repo, mail, notify, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level aggregate: a destination, a date range, and the
// people invited to it. Participants is only populated by repo calls that
// eagerly load them (see repo.TripRepo.GetWithGuests).
type Trip struct {
	ID           uuid.UUID
	Destination  string
	StartsAt     time.Time
	EndsAt       time.Time
	IsConfirmed  bool
	CreatedAt    time.Time
	Participants []Participant
}

// NewTrip carries everything needed to create a trip together with its owner
// and its initial invitees.
type NewTrip struct {
	Destination    string
	StartsAt       time.Time
	EndsAt         time.Time
	OwnerName      string
	OwnerEmail     string
	EmailsToInvite []string
}
