package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/appointment-booking/internal/availability"
)

// Appointment is a confirmed booking between one doctor and one patient over
// an absolute [Start,End) interval.
type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Date is the calendar day the appointment starts on.
func (a Appointment) Date() time.Time {
	y, m, d := a.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.Start.Location())
}

// Overlaps applies the half-open interval rule against [start,end).
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.Start.Before(end) && start.Before(a.End)
}

// Interval exposes the appointment as a slot for exact-match labeling.
func (a Appointment) Interval() availability.Slot {
	return availability.Slot{Start: a.Start, End: a.End}
}
