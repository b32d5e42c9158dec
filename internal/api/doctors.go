package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicbook/appointment-booking/internal/availability"
	"github.com/clinicbook/appointment-booking/internal/booking"
	"github.com/clinicbook/appointment-booking/internal/identity"
)

func listDoctorsHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		specialty := r.URL.Query().Get("specialty")

		doctors, err := svc.ListDoctors(r.Context(), name, specialty)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]DoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			resp = append(resp, toDoctorResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getDoctorHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		doctor, err := svc.GetDoctor(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorResponse(*doctor))
	}
}

// doctorSlotsHandler lists a doctor's generated slots for one date, labeled
// open, booked or past.
func doctorSlotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		dateStr := r.URL.Query().Get("date")
		if dateStr == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required (YYYY-MM-DD)")
			return
		}
		day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slots, err := svc.OpenSlots(r.Context(), id, day)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if slots == nil {
			slots = []availability.SlotView{}
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

// doctorAvailabilityHandler lists a doctor's declared windows for discovery
// by patients; expired dated windows are filtered out.
func doctorAvailabilityHandler(store *availability.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		caller, ok := requirePrincipal(w, r, "")
		if !ok {
			return
		}
		includePast := caller.IsDoctor() && caller.ProfileID == id

		windows, err := store.List(r.Context(), id, includePast)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]WindowResponse, 0, len(windows))
		for _, win := range windows {
			resp = append(resp, toWindowResponse(win))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
