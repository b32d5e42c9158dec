package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository is the appointment ledger's storage. It is the single writer of
// appointment state; no other component inserts bookings.
type Repository interface {
	Insert(ctx context.Context, a *Appointment) error
	Update(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Overlapping returns the doctor's appointments whose [Start,End)
	// intersects [start,end), excluding the given appointment ID when
	// rescheduling. uuid.Nil excludes nothing.
	Overlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excluding uuid.UUID) ([]Appointment, error)

	ListByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]Appointment, error)

	// ListStartingBetween feeds the reminder worker.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]Appointment, error)
}
