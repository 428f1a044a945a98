package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/pkordes/planner/backend/internal/domain"
	"github.com/pkordes/planner/backend/internal/mail"
	"github.com/pkordes/planner/backend/internal/notify"
	"github.com/pkordes/planner/backend/internal/repo"
)

// ---- mock repos ------------------------------------------------------------

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field — set only the ones your test needs.
type mockTripRepo struct {
	create        func(ctx context.Context, nt domain.NewTrip) (domain.Trip, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	getWithGuests func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	confirm       func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, nt domain.NewTrip) (domain.Trip, error) {
	return m.create(ctx, nt)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) GetWithGuests(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getWithGuests(ctx, id)
}
func (m *mockTripRepo) Confirm(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.confirm(ctx, id)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockParticipantRepo is a hand-written test double for repo.ParticipantRepo.
type mockParticipantRepo struct {
	getByID           func(ctx context.Context, id uuid.UUID) (domain.Participant, error)
	getOwner          func(ctx context.Context, tripID uuid.UUID) (domain.Participant, error)
	listByTripIDPaged func(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Participant, int64, error)
	confirm           func(ctx context.Context, id uuid.UUID) (domain.Participant, error)
}

func (m *mockParticipantRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Participant, error) {
	return m.getByID(ctx, id)
}
func (m *mockParticipantRepo) GetOwner(ctx context.Context, tripID uuid.UUID) (domain.Participant, error) {
	return m.getOwner(ctx, tripID)
}
func (m *mockParticipantRepo) ListByTripIDPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Participant, int64, error) {
	return m.listByTripIDPaged(ctx, tripID, p)
}
func (m *mockParticipantRepo) Confirm(ctx context.Context, id uuid.UUID) (domain.Participant, error) {
	return m.confirm(ctx, id)
}

var _ repo.ParticipantRepo = (*mockParticipantRepo)(nil)

// memStore is a stateful in-memory stand-in for both repos. It keeps the
// one-way latch semantics of the Postgres implementation so that repeated
// confirmations can be exercised end to end through the service.
type memStore struct {
	mu           sync.Mutex
	trips        map[uuid.UUID]domain.Trip
	participants map[uuid.UUID]domain.Participant
}

func newMemStore() *memStore {
	return &memStore{
		trips:        map[uuid.UUID]domain.Trip{},
		participants: map[uuid.UUID]domain.Participant{},
	}
}

func (s *memStore) addTrip(t domain.Trip, ps ...domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[t.ID] = t
	for _, p := range ps {
		p.TripID = t.ID
		s.participants[p.ID] = p
	}
}

func (s *memStore) tripRepo() *mockTripRepo {
	return &mockTripRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			t, ok := s.trips[id]
			if !ok {
				return domain.Trip{}, domain.ErrNotFound
			}
			return t, nil
		},
		getWithGuests: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			t, ok := s.trips[id]
			if !ok {
				return domain.Trip{}, domain.ErrNotFound
			}
			for _, p := range s.participants {
				if p.TripID == id && !p.IsOwner {
					t.Participants = append(t.Participants, p)
				}
			}
			return t, nil
		},
		confirm: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			t, ok := s.trips[id]
			if !ok {
				return domain.Trip{}, domain.ErrNotFound
			}
			if t.IsConfirmed {
				return domain.Trip{}, domain.ErrAlreadyConfirmed
			}
			t.IsConfirmed = true
			s.trips[id] = t
			return t, nil
		},
	}
}

func (s *memStore) participantRepo() *mockParticipantRepo {
	return &mockParticipantRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Participant, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			p, ok := s.participants[id]
			if !ok {
				return domain.Participant{}, domain.ErrNotFound
			}
			return p, nil
		},
		confirm: func(_ context.Context, id uuid.UUID) (domain.Participant, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			p, ok := s.participants[id]
			if !ok {
				return domain.Participant{}, domain.ErrNotFound
			}
			if p.IsConfirmed {
				return domain.Participant{}, domain.ErrAlreadyConfirmed
			}
			p.IsConfirmed = true
			s.participants[id] = p
			return p, nil
		},
	}
}

// ---- mail ------------------------------------------------------------------

// recordingSender captures every message handed to it. fail, when set,
// decides per recipient whether the send errors.
type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	fail func(to string) error
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) (string, error) {
	if r.fail != nil {
		if err := r.fail(msg.To); err != nil {
			return "", err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return uuid.NewString(), nil
}

func (r *recordingSender) messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}

const testBaseURL = "http://localhost:3333"

func newComposer() *notify.Composer {
	return notify.NewComposer(testBaseURL, language.BrazilianPortuguese)
}

func newDispatcher(s notify.Sender) *notify.Dispatcher {
	return notify.NewDispatcher(s, slog.New(slog.NewTextHandler(io.Discard, nil)), notify.DispatcherConfig{
		Timeout:     time.Second,
		MaxRetries:  1,
		Backoff:     time.Millisecond,
		Concurrency: 4,
	})
}
