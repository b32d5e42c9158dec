package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/appointment-booking/internal/availability"
)

var (
	ErrInvalidInterval     = errors.New("appointment start must be before end")
	ErrNotInFuture         = errors.New("appointment must be scheduled in the future")
	ErrOutsideAvailability = errors.New("appointment is outside the doctor's availability")
	ErrSlotTaken           = errors.New("the doctor already has an appointment in this time range")
)

// Validate runs the booking rules over a read snapshot, in order, stopping
// at the first failure. It performs no writes; the caller commits separately
// inside the per-doctor critical section.
func Validate(start, end time.Time, windows []availability.AvailabilityWindow, existing []Appointment, excluding uuid.UUID, now time.Time) error {
	if !start.Before(end) {
		return ErrInvalidInterval
	}
	if !start.After(now) {
		return ErrNotInFuture
	}

	covered := false
	for _, w := range windows {
		if w.Covers(start, end) {
			covered = true
			break
		}
	}
	if !covered {
		return ErrOutsideAvailability
	}

	for _, a := range existing {
		if excluding != uuid.Nil && a.ID == excluding {
			continue
		}
		if a.Overlaps(start, end) {
			return ErrSlotTaken
		}
	}
	return nil
}
