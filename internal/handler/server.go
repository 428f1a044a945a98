// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, participant.go) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/planner/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, nt domain.NewTrip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Confirm(ctx context.Context, id uuid.UUID) error
}

// ParticipantServicer defines the business operations the participant handlers depend on.
type ParticipantServicer interface {
	Confirm(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Participant, error)
	ListByTripPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Participant, int64, error)
}

// Server holds the dependencies shared by every handler.
// Wire it in main.go by mounting Server.Routes on the root router.
type Server struct {
	trips        TripServicer
	participants ParticipantServicer
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(trips TripServicer, participants ParticipantServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{trips: trips, participants: participants, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns the API router. Path parameters named *Id are UUIDs and are
// rejected with 400 before reaching any handler logic when malformed.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Post("/trips", s.CreateTrip)
	r.Get("/trips/{tripId}", s.GetTrip)
	r.Get("/trips/{tripId}/confirm", s.ConfirmTrip)
	r.Get("/trips/{tripId}/participants", s.ListParticipants)

	r.Get("/participants/{participantId}", s.GetParticipant)
	r.Get("/participants/{participantId}/confirm", s.ConfirmParticipant)

	return r
}

// pathUUID binds a UUID path parameter the same way oapi-codegen generated
// servers do. Returns false after writing a 400 response when the value is
// missing or malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid "+name+": must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// pageParams binds the optional ?page= and ?limit= query parameters.
// Returns false after writing a 400 response when either is not an integer.
func pageParams(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid page: must be an integer"))
		return domain.PaginationParams{}, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid limit: must be an integer"))
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}
