package availability

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a clock time without a date, stored as minutes from midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On anchors the clock time to the calendar day of `day`, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("time of day must be a %q string", "HH:MM")
	}
	parsed, err := ParseTimeOfDay(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type WindowKind string

const (
	KindRecurring WindowKind = "recurring"
	KindDated     WindowKind = "dated"
)

const (
	MinSlotDuration = 5 * time.Minute
	MaxSlotDuration = 240 * time.Minute

	// DefaultSlotDuration is used for recurring windows, which carry no
	// declared slot size of their own.
	DefaultSlotDuration = 30 * time.Minute
)

// AvailabilityWindow is a doctor-declared interval during which bookings are
// permitted. Recurring windows repeat on a weekday; dated windows apply to a
// single calendar date and carry their own slot size.
type AvailabilityWindow struct {
	ID           uuid.UUID
	DoctorID     uuid.UUID
	Kind         WindowKind
	Weekday      time.Weekday // recurring only
	Date         time.Time    // dated only, midnight in clinic-local time
	Start        TimeOfDay
	End          TimeOfDay
	SlotDuration time.Duration // dated only
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SlotSize returns the slot length used when chunking this window.
func (w AvailabilityWindow) SlotSize() time.Duration {
	if w.Kind == KindDated && w.SlotDuration > 0 {
		return w.SlotDuration
	}
	return DefaultSlotDuration
}

// AppliesOn reports whether the window governs the given calendar day.
func (w AvailabilityWindow) AppliesOn(day time.Time) bool {
	switch w.Kind {
	case KindRecurring:
		return day.Weekday() == w.Weekday
	case KindDated:
		return sameDate(day, w.Date)
	}
	return false
}

// Covers reports whether the interval [start,end) is a legal booking against
// this window. Both endpoints must fall on a day the window applies to, with
// the time range contained in [w.Start,w.End]. Dated windows are stricter:
// the interval must coincide exactly with one generated slot.
func (w AvailabilityWindow) Covers(start, end time.Time) bool {
	if !start.Before(end) {
		return false
	}
	// Windows are clock-time ranges, so a booking can never span midnight.
	if !sameDate(start, end) {
		return false
	}
	if !w.AppliesOn(start) {
		return false
	}

	// Compare full instants, not truncated clock times, so an interval
	// carrying seconds cannot spill past the window boundary.
	if start.Before(w.Start.On(start)) || end.After(w.End.On(start)) {
		return false
	}

	if w.Kind == KindDated {
		size := w.SlotSize()
		offset := start.Sub(w.Start.On(start))
		return end.Sub(start) == size && offset%size == 0
	}
	return true
}

// OverlapsWindow applies the half-open overlap rule to two windows sharing a
// day-key. Windows of different kinds or different day-keys never conflict.
func (w AvailabilityWindow) OverlapsWindow(o AvailabilityWindow) bool {
	if w.Kind != o.Kind {
		return false
	}
	switch w.Kind {
	case KindRecurring:
		if w.Weekday != o.Weekday {
			return false
		}
	case KindDated:
		if !sameDate(w.Date, o.Date) {
			return false
		}
	}
	return w.Start < o.End && o.Start < w.End
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
