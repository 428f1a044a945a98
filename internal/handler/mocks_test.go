package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/planner/backend/internal/domain"
	"github.com/pkordes/planner/backend/internal/handler"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create  func(ctx context.Context, nt domain.NewTrip) (domain.Trip, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	confirm func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, nt domain.NewTrip) (domain.Trip, error) {
	return m.create(ctx, nt)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) Confirm(ctx context.Context, id uuid.UUID) error {
	return m.confirm(ctx, id)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockParticipantServicer is a test double for handler.ParticipantServicer.
type mockParticipantServicer struct {
	confirm         func(ctx context.Context, id uuid.UUID) error
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Participant, error)
	listByTripPaged func(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Participant, int64, error)
}

func (m *mockParticipantServicer) Confirm(ctx context.Context, id uuid.UUID) error {
	return m.confirm(ctx, id)
}
func (m *mockParticipantServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Participant, error) {
	return m.getByID(ctx, id)
}
func (m *mockParticipantServicer) ListByTripPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Participant, int64, error) {
	return m.listByTripPaged(ctx, tripID, p)
}

var _ handler.ParticipantServicer = (*mockParticipantServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into its router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(trips handler.TripServicer, participants handler.ParticipantServicer) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(trips, participants, log).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body io.Reader) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
