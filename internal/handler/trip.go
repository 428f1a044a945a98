package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/planner/backend/internal/domain"
)

// CreateTripRequest is the body of POST /trips.
type CreateTripRequest struct {
	Destination    string                `json:"destination"`
	StartsAt       time.Time             `json:"starts_at"`
	EndsAt         time.Time             `json:"ends_at"`
	OwnerName      string                `json:"owner_name"`
	OwnerEmail     openapi_types.Email   `json:"owner_email"`
	EmailsToInvite []openapi_types.Email `json:"emails_to_invite"`
}

// CreateTripResponse is the 201 body of POST /trips.
type CreateTripResponse struct {
	TripID uuid.UUID `json:"trip_id"`
}

// Trip is the JSON representation of a trip.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	Destination string    `json:"destination"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	IsConfirmed bool      `json:"is_confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{
				Code: "payload_too_large", Message: "request body too large",
			}})
		case errors.Is(err, openapi_types.ErrValidationEmail):
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{
				Code: "validation_error", Message: "owner_email and emails_to_invite must be valid email addresses",
			}})
		default:
			writeJSON(w, http.StatusBadRequest, requestBody("request body must be a valid JSON object"))
		}
		return
	}

	trip, err := s.trips.Create(r.Context(), requestToNewTrip(body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusCreated, CreateTripResponse{TripID: trip.ID})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// ConfirmTrip handles GET /trips/{tripId}/confirm.
// It is a GET because it is reached from a link in an email.
func (s *Server) ConfirmTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}

	if err := s.trips.Confirm(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToNewTrip converts a CreateTripRequest body into a domain.NewTrip.
// Business validation happens in the service layer.
func requestToNewTrip(body CreateTripRequest) domain.NewTrip {
	emails := make([]string, len(body.EmailsToInvite))
	for i, e := range body.EmailsToInvite {
		emails[i] = string(e)
	}
	return domain.NewTrip{
		Destination:    body.Destination,
		StartsAt:       body.StartsAt,
		EndsAt:         body.EndsAt,
		OwnerName:      body.OwnerName,
		OwnerEmail:     string(body.OwnerEmail),
		EmailsToInvite: emails,
	}
}

// tripToResponse converts a domain.Trip into its JSON representation.
func tripToResponse(t domain.Trip) Trip {
	return Trip{
		ID:          t.ID,
		Destination: t.Destination,
		StartsAt:    t.StartsAt,
		EndsAt:      t.EndsAt,
		IsConfirmed: t.IsConfirmed,
		CreatedAt:   t.CreatedAt,
	}
}
