package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/planner/backend/internal/domain"
)

// ParticipantRepo defines the persistence operations for Participants.
type ParticipantRepo interface {
	// GetByID retrieves a single participant by its UUID primary key.
	// Returns domain.ErrNotFound if no participant with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Participant, error)

	// GetOwner returns the owner participant of a trip.
	// Returns domain.ErrNotFound if the trip has no owner row.
	GetOwner(ctx context.Context, tripID uuid.UUID) (domain.Participant, error)

	// ListByTripIDPaged returns one page of a trip's participants (owner first,
	// then by creation time) and the total count for that trip.
	ListByTripIDPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Participant, int64, error)

	// Confirm atomically flips is_confirmed from false to true and returns the
	// updated participant. Returns domain.ErrNotFound if the participant does
	// not exist and domain.ErrAlreadyConfirmed if it was already confirmed.
	Confirm(ctx context.Context, id uuid.UUID) (domain.Participant, error)
}

// pgParticipantRepo is the Postgres implementation of ParticipantRepo.
type pgParticipantRepo struct {
	db db
}

// NewParticipantRepo constructs a ParticipantRepo backed by the provided db connection.
func NewParticipantRepo(db db) ParticipantRepo {
	return &pgParticipantRepo{db: db}
}

const participantColumns = `id, trip_id, name, email, is_owner, is_confirmed, created_at`

func (r *pgParticipantRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE id = @id`

	result, err := scanParticipant(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgParticipantRepo) GetOwner(ctx context.Context, tripID uuid.UUID) (domain.Participant, error) {
	const q = `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE trip_id = @trip_id AND is_owner = true`

	result, err := scanParticipant(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.GetOwner: %w", err)
	}
	return result, nil
}

func (r *pgParticipantRepo) ListByTripIDPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Participant, int64, error) {
	const countQ = `SELECT count(*) FROM participants WHERE trip_id = @trip_id`
	const q = `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE trip_id = @trip_id
		ORDER BY is_owner DESC, created_at, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"trip_id": tripID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ParticipantRepo.ListByTripIDPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"trip_id": tripID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ParticipantRepo.ListByTripIDPaged: %w", err)
	}
	participants, err := collectParticipants(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ParticipantRepo.ListByTripIDPaged: %w", err)
	}
	return participants, total, nil
}

func (r *pgParticipantRepo) Confirm(ctx context.Context, id uuid.UUID) (domain.Participant, error) {
	const q = `
		UPDATE participants
		SET is_confirmed = true
		WHERE id = @id AND is_confirmed = false
		RETURNING ` + participantColumns

	result, err := scanParticipant(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if errors.Is(err, domain.ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.Confirm: %w", getErr)
		}
		return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.Confirm: %w", domain.ErrAlreadyConfirmed)
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("repo.ParticipantRepo.Confirm: %w", err)
	}
	return result, nil
}

// scanParticipant maps a single database row into a domain.Participant.
// name is nullable: invitees have no name until they supply one.
func scanParticipant(s scanner) (domain.Participant, error) {
	var (
		p      domain.Participant
		id     pgtype.UUID
		tripID pgtype.UUID
		name   pgtype.Text
	)

	err := s.Scan(&id, &tripID, &name, &p.Email, &p.IsOwner, &p.IsConfirmed, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Participant{}, domain.ErrNotFound
		}
		return domain.Participant{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.TripID = uuid.UUID(tripID.Bytes)
	if name.Valid {
		p.Name = name.String
	}
	return p, nil
}

// collectParticipants drains rows into a slice and closes them.
func collectParticipants(rows pgx.Rows) ([]domain.Participant, error) {
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
