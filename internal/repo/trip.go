// Package repo contains all database access logic for the trip planner.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/planner/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
// Begin on a pgx.Tx opens a savepoint, so multi-statement writes still nest
// correctly inside a test transaction.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts the trip, its owner participant and one participant per
	// invited email in a single transaction. The returned Trip has
	// Participants populated, owner first.
	Create(ctx context.Context, nt domain.NewTrip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key, without participants.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetWithGuests retrieves a trip together with its non-owner participants.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetWithGuests(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// Confirm atomically flips is_confirmed from false to true and returns the
	// updated trip. Returns domain.ErrNotFound if the trip does not exist and
	// domain.ErrAlreadyConfirmed if it was already confirmed. Of several
	// concurrent callers exactly one succeeds.
	Confirm(ctx context.Context, id uuid.UUID) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, destination, starts_at, ends_at, is_confirmed, created_at`

// Create inserts the trip and all of its participants atomically.
func (r *pgTripRepo) Create(ctx context.Context, nt domain.NewTrip) (domain.Trip, error) {
	const insertTrip = `
		INSERT INTO trips (destination, starts_at, ends_at)
		VALUES (@destination, @starts_at, @ends_at)
		RETURNING ` + tripColumns

	// The owner created the trip, so their own attendance is implied.
	const insertOwner = `
		INSERT INTO participants (trip_id, name, email, is_owner, is_confirmed)
		VALUES (@trip_id, @name, @email, true, true)
		RETURNING ` + participantColumns

	const insertGuests = `
		INSERT INTO participants (trip_id, email)
		SELECT @trip_id, unnest(@emails::text[])
		RETURNING ` + participantColumns

	var trip domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		trip, err = scanTrip(tx.QueryRow(ctx, insertTrip, pgx.NamedArgs{
			"destination": nt.Destination,
			"starts_at":   nt.StartsAt,
			"ends_at":     nt.EndsAt,
		}))
		if err != nil {
			return fmt.Errorf("insert trip: %w", err)
		}

		owner, err := scanParticipant(tx.QueryRow(ctx, insertOwner, pgx.NamedArgs{
			"trip_id": trip.ID,
			"name":    nt.OwnerName,
			"email":   nt.OwnerEmail,
		}))
		if err != nil {
			return fmt.Errorf("insert owner: %w", err)
		}
		trip.Participants = append(trip.Participants, owner)

		if len(nt.EmailsToInvite) == 0 {
			return nil
		}
		rows, err := tx.Query(ctx, insertGuests, pgx.NamedArgs{
			"trip_id": trip.ID,
			"emails":  nt.EmailsToInvite,
		})
		if err != nil {
			return fmt.Errorf("insert guests: %w", err)
		}
		guests, err := collectParticipants(rows)
		if err != nil {
			return fmt.Errorf("insert guests: %w", err)
		}
		trip.Participants = append(trip.Participants, guests...)
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return trip, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetWithGuests retrieves a trip and eagerly loads participants where
// is_owner = false, ordered by creation time.
func (r *pgTripRepo) GetWithGuests(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE trip_id = @trip_id AND is_owner = false
		ORDER BY created_at, id`

	trip, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetWithGuests: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": id})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetWithGuests: %w", err)
	}
	guests, err := collectParticipants(rows)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetWithGuests: %w", err)
	}
	trip.Participants = guests
	return trip, nil
}

// Confirm sets is_confirmed only when it is still false. The WHERE clause makes
// the read-check-write a single statement, so concurrent confirmations race on
// the row lock and the loser sees zero rows.
func (r *pgTripRepo) Confirm(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET is_confirmed = true
		WHERE id = @id AND is_confirmed = false
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if errors.Is(err, domain.ErrNotFound) {
		// Zero rows: either the trip is missing or it was already confirmed.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Confirm: %w", getErr)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Confirm: %w", domain.ErrAlreadyConfirmed)
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Confirm: %w", err)
	}
	return result, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t  domain.Trip
		id pgtype.UUID
	)

	err := s.Scan(&id, &t.Destination, &t.StartsAt, &t.EndsAt, &t.IsConfirmed, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
