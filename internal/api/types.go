package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/appointment-booking/internal/availability"
	"github.com/clinicbook/appointment-booking/internal/booking"
	"github.com/clinicbook/appointment-booking/internal/identity"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Specialty string `json:"specialty,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty,omitempty"`
}

type WindowRequest struct {
	Kind                string `json:"kind"`
	Weekday             string `json:"weekday,omitempty"`
	Date                string `json:"date,omitempty"` // YYYY-MM-DD
	Start               string `json:"start"`          // HH:MM
	End                 string `json:"end"`            // HH:MM
	SlotDurationMinutes int    `json:"slot_duration_minutes,omitempty"`
}

type WindowResponse struct {
	ID                  uuid.UUID `json:"id"`
	Kind                string    `json:"kind"`
	Weekday             string    `json:"weekday,omitempty"`
	Date                string    `json:"date,omitempty"`
	Start               string    `json:"start"`
	End                 string    `json:"end"`
	SlotDurationMinutes int       `json:"slot_duration_minutes,omitempty"`
}

type CreateAppointmentRequest struct {
	DoctorID string    `json:"doctor_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type RescheduleRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	Date            string    `json:"date"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	if wd, ok := weekdays[strings.ToLower(s)]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

func (req WindowRequest) toWindow() (availability.AvailabilityWindow, error) {
	var w availability.AvailabilityWindow

	start, err := availability.ParseTimeOfDay(req.Start)
	if err != nil {
		return w, err
	}
	end, err := availability.ParseTimeOfDay(req.End)
	if err != nil {
		return w, err
	}
	w.Start = start
	w.End = end

	switch availability.WindowKind(req.Kind) {
	case availability.KindRecurring:
		w.Kind = availability.KindRecurring
		wd, err := parseWeekday(req.Weekday)
		if err != nil {
			return w, err
		}
		w.Weekday = wd
	case availability.KindDated:
		w.Kind = availability.KindDated
		date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			return w, fmt.Errorf("invalid date %q: %w", req.Date, err)
		}
		w.Date = date
		w.SlotDuration = time.Duration(req.SlotDurationMinutes) * time.Minute
	default:
		return w, fmt.Errorf("kind must be %q or %q", availability.KindRecurring, availability.KindDated)
	}

	return w, nil
}

func toWindowResponse(w availability.AvailabilityWindow) WindowResponse {
	resp := WindowResponse{
		ID:    w.ID,
		Kind:  string(w.Kind),
		Start: w.Start.String(),
		End:   w.End.String(),
	}
	switch w.Kind {
	case availability.KindRecurring:
		resp.Weekday = strings.ToLower(w.Weekday.String())
	case availability.KindDated:
		resp.Date = w.Date.Format("2006-01-02")
		resp.SlotDurationMinutes = int(w.SlotDuration / time.Minute)
	}
	return resp
}

func toAppointmentResponse(a booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		Start:           a.Start,
		End:             a.End,
		DurationMinutes: int(a.Duration() / time.Minute),
		Date:            a.Date().Format("2006-01-02"),
	}
}

func toDoctorResponse(d identity.Doctor) DoctorResponse {
	return DoctorResponse{ID: d.ID, Name: d.Name, Specialty: d.Specialty}
}
