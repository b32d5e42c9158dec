package availability

import (
	"time"
)

// Slot is a discrete bookable sub-interval derived from a window. Slots are
// never persisted; they are recomputed on demand.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SlotState string

const (
	SlotOpen   SlotState = "open"
	SlotBooked SlotState = "booked"
	SlotPast   SlotState = "past"
)

// SlotView is a generated slot together with its bookability on a given day.
type SlotView struct {
	Slot
	State SlotState `json:"state"`
}

// GenerateSlots chunks the window into fixed-size slots on the given calendar
// day. The walk starts at the window start and stops before any slot would
// run past the window end; a trailing remainder shorter than one slot is
// dropped. Returns nil when the window does not apply to the day.
func GenerateSlots(w AvailabilityWindow, day time.Time) []Slot {
	if !w.AppliesOn(day) {
		return nil
	}

	size := w.SlotSize()
	start := w.Start.On(day)
	end := w.End.On(day)

	var slots []Slot
	for cur := start; !cur.Add(size).After(end); cur = cur.Add(size) {
		slots = append(slots, Slot{Start: cur, End: cur.Add(size)})
	}
	return slots
}

// AvailableSlots generates the day's slots and labels each one. A slot is
// booked only when an existing appointment matches its interval exactly; a
// slot starting at or before now is past, matching the booking rule that an
// appointment must start strictly in the future. Partial-overlap conflicts
// are the booking validator's concern, not this label's.
func AvailableSlots(w AvailabilityWindow, day time.Time, booked []Slot, now time.Time) []SlotView {
	slots := GenerateSlots(w, day)
	if slots == nil {
		return nil
	}

	views := make([]SlotView, 0, len(slots))
	for _, s := range slots {
		state := SlotOpen
		switch {
		case !s.Start.After(now):
			state = SlotPast
		case isBooked(s, booked):
			state = SlotBooked
		}
		views = append(views, SlotView{Slot: s, State: state})
	}
	return views
}

func isBooked(s Slot, booked []Slot) bool {
	for _, b := range booked {
		if b.Start.Equal(s.Start) && b.End.Equal(s.End) {
			return true
		}
	}
	return false
}
