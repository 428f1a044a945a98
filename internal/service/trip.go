// Package service contains the business logic for the trip planner.
// Services validate inputs, enforce business rules, and orchestrate repo and
// notification calls. No SQL lives here; services depend on repo interfaces,
// not implementations.
package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/planner/backend/internal/domain"
	"github.com/pkordes/planner/backend/internal/notify"
	"github.com/pkordes/planner/backend/internal/repo"
)

// Dispatcher fans notifications out and reports one result per delivery.
// *notify.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, deliveries []notify.Delivery) []notify.DeliveryResult
}

// minDestinationLen is the minimum destination length in characters.
const minDestinationLen = 4

// TripService implements business logic for Trip operations.
type TripService struct {
	trips      repo.TripRepo
	composer   *notify.Composer
	dispatcher Dispatcher
	now        func() time.Time
}

// NewTripService constructs a TripService.
func NewTripService(trips repo.TripRepo, composer *notify.Composer, dispatcher Dispatcher) *TripService {
	return &TripService{trips: trips, composer: composer, dispatcher: dispatcher, now: time.Now}
}

// Create validates nt, persists the trip with its owner and invitees, and
// emails the owner a link to confirm the trip.
// Returns domain.ErrValidation if input violates business rules. If the trip
// was stored but the owner email failed, the stored trip is returned together
// with a *domain.NotificationError.
func (s *TripService) Create(ctx context.Context, nt domain.NewTrip) (domain.Trip, error) {
	nt, err := s.normalizeNewTrip(nt)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	trip, err := s.trips.Create(ctx, nt)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	owner, ok := ownerOf(trip)
	if !ok {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: trip %s stored without owner", trip.ID)
	}
	msg, err := s.composer.TripConfirmationRequest(trip, owner)
	if err != nil {
		return trip, fmt.Errorf("service.TripService.Create: %w", err)
	}

	results := s.dispatcher.Dispatch(context.WithoutCancel(ctx), []notify.Delivery{
		{ParticipantID: owner.ID, Message: msg},
	})
	if err := notify.Failures(trip.ID, results); err != nil {
		return trip, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return trip, nil
}

// GetByID returns a single trip by ID, without participants.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// Confirm marks a trip confirmed and emails every non-owner participant a
// link to confirm their own attendance.
//
// The confirmed flag is committed before any email is sent and is never rolled
// back. Every email is attempted; if any of them fails, Confirm returns a
// *domain.NotificationError listing the failed participants while the trip
// stays confirmed.
//
// Returns domain.ErrNotFound if the trip does not exist and
// domain.ErrAlreadyConfirmed if it was already confirmed, including when a
// concurrent call confirmed it first.
func (s *TripService) Confirm(ctx context.Context, id uuid.UUID) error {
	trip, err := s.trips.GetWithGuests(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Confirm: %w", err)
	}
	if trip.IsConfirmed {
		return fmt.Errorf("service.TripService.Confirm: %w", domain.ErrAlreadyConfirmed)
	}

	// The conditional update is what actually guards the latch; the check
	// above only saves a write in the common case.
	if _, err := s.trips.Confirm(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Confirm: %w", err)
	}

	deliveries := make([]notify.Delivery, 0, len(trip.Participants))
	for _, p := range trip.Participants {
		if p.IsOwner {
			continue
		}
		msg, err := s.composer.TripInvitation(trip, p)
		if err != nil {
			return fmt.Errorf("service.TripService.Confirm: %w", err)
		}
		deliveries = append(deliveries, notify.Delivery{ParticipantID: p.ID, Message: msg})
	}

	// The trip is already confirmed; a client hanging up must not stop the
	// invitations. Each attempt is still bounded by the dispatcher's timeout.
	results := s.dispatcher.Dispatch(context.WithoutCancel(ctx), deliveries)
	if err := notify.Failures(trip.ID, results); err != nil {
		return fmt.Errorf("service.TripService.Confirm: %w", err)
	}
	return nil
}

// normalizeNewTrip enforces the business rules for a new trip and returns a
// cleaned copy:
//   - Destination must have at least 4 characters after trimming.
//   - StartsAt must not be in the past; EndsAt must not be before StartsAt.
//   - Owner name is required; owner and invitee emails must be valid addresses.
//   - Invitee emails are lowercased and de-duplicated, and the owner's own
//     address is dropped from the invitee list.
func (s *TripService) normalizeNewTrip(nt domain.NewTrip) (domain.NewTrip, error) {
	nt.Destination = strings.TrimSpace(nt.Destination)
	if utf8.RuneCountInString(nt.Destination) < minDestinationLen {
		return nt, fmt.Errorf("%w: destination must have at least %d characters", domain.ErrValidation, minDestinationLen)
	}
	if nt.StartsAt.IsZero() || nt.EndsAt.IsZero() {
		return nt, fmt.Errorf("%w: starts_at and ends_at are required", domain.ErrValidation)
	}
	if nt.StartsAt.Before(s.now()) {
		return nt, fmt.Errorf("%w: starts_at must not be in the past", domain.ErrValidation)
	}
	if nt.EndsAt.Before(nt.StartsAt) {
		return nt, fmt.Errorf("%w: ends_at must not be before starts_at", domain.ErrValidation)
	}

	nt.OwnerName = strings.TrimSpace(nt.OwnerName)
	if nt.OwnerName == "" {
		return nt, fmt.Errorf("%w: owner_name is required", domain.ErrValidation)
	}
	owner, err := normalizeEmail(nt.OwnerEmail)
	if err != nil {
		return nt, fmt.Errorf("%w: owner_email: %s", domain.ErrValidation, err)
	}
	nt.OwnerEmail = owner

	seen := map[string]bool{owner: true}
	invitees := make([]string, 0, len(nt.EmailsToInvite))
	for _, raw := range nt.EmailsToInvite {
		e, err := normalizeEmail(raw)
		if err != nil {
			return nt, fmt.Errorf("%w: emails_to_invite: %s", domain.ErrValidation, err)
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		invitees = append(invitees, e)
	}
	nt.EmailsToInvite = invitees
	return nt, nil
}

// normalizeEmail accepts a bare address ("a@x.com") only, lowercased.
func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", fmt.Errorf("%q is not a valid email address", raw)
	}
	return strings.ToLower(addr.Address), nil
}

func ownerOf(trip domain.Trip) (domain.Participant, bool) {
	for _, p := range trip.Participants {
		if p.IsOwner {
			return p, true
		}
	}
	return domain.Participant{}, false
}
