package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/planner/backend/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NotificationFailureDetails is the Details payload of a notification_failed error.
type NotificationFailureDetails struct {
	TripID             uuid.UUID   `json:"trip_id"`
	FailedParticipants []uuid.UUID `json:"failed_participants"`
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the message (e.g. "trip not found") because the handler
// is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse for a domain validation failure.
func validationBody(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)}}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. malformed body or path parameter).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "bad_request", Message: message}}
}

// writeServiceError maps a service error to its HTTP response. what names the
// looked-up resource ("trip", "participant") for 404 and 409 messages.
// Unrecognized errors are logged and answered with an opaque 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var nerr *domain.NotificationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(what+" not found"))
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: ErrorDetail{
			Code: "already_confirmed", Message: what + " already confirmed",
		}})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.As(err, &nerr):
		s.log.WarnContext(r.Context(), "notifications failed after state change",
			"trip_id", nerr.TripID, "failed", len(nerr.Failures), "error", err)
		failed := make([]uuid.UUID, len(nerr.Failures))
		for i, f := range nerr.Failures {
			failed[i] = f.ParticipantID
		}
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: ErrorDetail{
			Code:    "notification_failed",
			Message: "the change was saved but some notification emails could not be sent",
			Details: NotificationFailureDetails{TripID: nerr.TripID, FailedParticipants: failed},
		}})
	default:
		s.log.ErrorContext(r.Context(), "request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
			Code: "internal_error", Message: "internal server error",
		}})
	}
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.TripService.Create: validation error: owner_name is required" → "owner_name is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errchkjson — the status line is already written; nothing useful to do on failure.
	_ = json.NewEncoder(w).Encode(v)
}
