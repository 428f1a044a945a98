package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/planner/backend/internal/domain"
	"github.com/pkordes/planner/backend/internal/repo"
)

// ParticipantService implements business logic for Participant operations.
// It holds the trip repo because listing participants first verifies the
// parent trip exists.
type ParticipantService struct {
	trips        repo.TripRepo
	participants repo.ParticipantRepo
}

// NewParticipantService constructs a ParticipantService backed by the provided repos.
func NewParticipantService(trips repo.TripRepo, participants repo.ParticipantRepo) *ParticipantService {
	return &ParticipantService{trips: trips, participants: participants}
}

// Confirm marks a participant's attendance as confirmed.
// Returns domain.ErrNotFound if the participant does not exist and
// domain.ErrAlreadyConfirmed if it was already confirmed.
func (s *ParticipantService) Confirm(ctx context.Context, id uuid.UUID) error {
	if _, err := s.participants.Confirm(ctx, id); err != nil {
		return fmt.Errorf("service.ParticipantService.Confirm: %w", err)
	}
	return nil
}

// GetByID returns a single participant.
func (s *ParticipantService) GetByID(ctx context.Context, id uuid.UUID) (domain.Participant, error) {
	p, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("service.ParticipantService.GetByID: %w", err)
	}
	return p, nil
}

// ListByTripPaged returns one page of a trip's participants and the total count.
// Returns domain.ErrNotFound if the trip does not exist.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ParticipantService) ListByTripPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Participant, int64, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, 0, fmt.Errorf("service.ParticipantService.ListByTripPaged: %w", err)
	}
	participants, total, err := s.participants.ListByTripIDPaged(ctx, tripID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ParticipantService.ListByTripPaged: %w", err)
	}
	if participants == nil {
		participants = []domain.Participant{}
	}
	return participants, total, nil
}
