package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/planner/backend/internal/domain"
)

// Participant is the JSON representation of a participant.
type Participant struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	Name        *string   `json:"name,omitempty"`
	Email       string    `json:"email"`
	IsOwner     bool      `json:"is_owner"`
	IsConfirmed bool      `json:"is_confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ParticipantList is the body of GET /trips/{tripId}/participants.
type ParticipantList struct {
	Data       []Participant `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// ConfirmParticipant handles GET /participants/{participantId}/confirm.
func (s *Server) ConfirmParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "participantId")
	if !ok {
		return
	}

	if err := s.participants.Confirm(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "participant")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetParticipant handles GET /participants/{participantId}.
func (s *Server) GetParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "participantId")
	if !ok {
		return
	}

	p, err := s.participants.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "participant")
		return
	}

	writeJSON(w, http.StatusOK, participantToResponse(p))
}

// ListParticipants handles GET /trips/{tripId}/participants.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListParticipants(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	params, ok := pageParams(w, r)
	if !ok {
		return
	}

	participants, total, err := s.participants.ListByTripPaged(r.Context(), tripID, params)
	if err != nil {
		s.writeServiceError(w, r, err, "trip")
		return
	}

	data := make([]Participant, len(participants))
	for i, p := range participants {
		data[i] = participantToResponse(p)
	}
	writeJSON(w, http.StatusOK, ParticipantList{
		Data: data,
		Pagination: Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      int(total),
			TotalPages: params.TotalPages(total),
		},
	})
}

// participantToResponse converts a domain.Participant to its JSON representation.
// An empty name (invitees who have not introduced themselves) is omitted.
func participantToResponse(p domain.Participant) Participant {
	resp := Participant{
		ID:          p.ID,
		TripID:      p.TripID,
		Email:       p.Email,
		IsOwner:     p.IsOwner,
		IsConfirmed: p.IsConfirmed,
		CreatedAt:   p.CreatedAt,
	}
	if p.Name != "" {
		resp.Name = &p.Name
	}
	return resp
}
