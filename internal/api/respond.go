package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinicbook/appointment-booking/internal/availability"
	"github.com/clinicbook/appointment-booking/internal/booking"
	"github.com/clinicbook/appointment-booking/internal/identity"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeDomainError maps service sentinels to HTTP statuses: validation
// failures to 400, authorization to 403, missing records to 404, booking
// conflicts to 409.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidInterval),
		errors.Is(err, booking.ErrNotInFuture),
		errors.Is(err, booking.ErrOutsideAvailability),
		errors.Is(err, availability.ErrInvalidInterval),
		errors.Is(err, availability.ErrInvalidSlotDuration),
		errors.Is(err, availability.ErrPastDate),
		errors.Is(err, availability.ErrInvalidWeekday),
		errors.Is(err, identity.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())

	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())

	case errors.Is(err, booking.ErrNotOwner),
		errors.Is(err, availability.ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())

	case errors.Is(err, booking.ErrAppointmentNotFound),
		errors.Is(err, availability.ErrWindowNotFound),
		errors.Is(err, identity.ErrDoctorNotFound),
		errors.Is(err, identity.ErrPatientNotFound),
		errors.Is(err, identity.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, booking.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.Is(err, availability.ErrOverlappingWindow):
		writeError(w, http.StatusConflict, "overlapping_window", err.Error())
	case errors.Is(err, booking.ErrDoctorBusy):
		writeError(w, http.StatusConflict, "doctor_being_booked", "doctor is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrDoctorNotBookable):
		writeError(w, http.StatusConflict, "doctor_not_bookable", err.Error())
	case errors.Is(err, identity.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
