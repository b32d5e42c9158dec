package availability

import (
	"testing"
	"time"
)

func TestGenerateSlots_ExactFit(t *testing.T) {
	w := recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0))

	slots := GenerateSlots(w, day)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots for a 60-minute window with 30-minute slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(9, 0)) || !slots[0].End.Equal(at(9, 30)) {
		t.Errorf("first slot = [%s, %s)", slots[0].Start, slots[0].End)
	}
	if !slots[1].Start.Equal(at(9, 30)) || !slots[1].End.Equal(at(10, 0)) {
		t.Errorf("second slot = [%s, %s)", slots[1].Start, slots[1].End)
	}
}

func TestGenerateSlots_DatedWindow(t *testing.T) {
	w := datedWindow(day, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0), 30*time.Minute)

	slots := GenerateSlots(w, day)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(9, 0)) || !slots[1].Start.Equal(at(9, 30)) {
		t.Errorf("slot starts = %s, %s", slots[0].Start, slots[1].Start)
	}
}

func TestGenerateSlots_TruncatesRemainder(t *testing.T) {
	// 100 minutes at 30-minute slots: 3 slots, 10-minute tail dropped.
	w := recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 40))

	slots := GenerateSlots(w, day)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	last := slots[len(slots)-1]
	if !last.End.Equal(at(10, 30)) {
		t.Errorf("last slot must end at 10:30, got %s", last.End)
	}
}

func TestGenerateSlots_ShorterThanOneSlot(t *testing.T) {
	w := recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(9, 20))
	if slots := GenerateSlots(w, day); len(slots) != 0 {
		t.Errorf("window shorter than one slot must yield no slots, got %d", len(slots))
	}
}

func TestGenerateSlots_Contiguous(t *testing.T) {
	w := datedWindow(day, NewTimeOfDay(8, 0), NewTimeOfDay(12, 0), 25*time.Minute)

	slots := GenerateSlots(w, day)
	if len(slots) != 9 {
		t.Fatalf("240 minutes at 25-minute slots should give 9 slots, got %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i].Start.Equal(slots[i-1].End) {
			t.Errorf("slot %d starts at %s, previous ends at %s", i, slots[i].Start, slots[i-1].End)
		}
	}
}

func TestGenerateSlots_WrongDay(t *testing.T) {
	w := recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0))
	if slots := GenerateSlots(w, day.AddDate(0, 0, 1)); slots != nil {
		t.Errorf("expected no slots on a non-matching day, got %d", len(slots))
	}
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	w := datedWindow(day, NewTimeOfDay(9, 0), NewTimeOfDay(17, 0), 45*time.Minute)

	first := GenerateSlots(w, day)
	second := GenerateSlots(w, day)
	if len(first) != len(second) {
		t.Fatalf("slot counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Start.Equal(second[i].Start) || !first[i].End.Equal(second[i].End) {
			t.Errorf("slot %d differs between runs", i)
		}
	}
}

func TestAvailableSlots_Labels(t *testing.T) {
	w := recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(11, 0))
	booked := []Slot{{Start: at(10, 0), End: at(10, 30)}}
	now := at(9, 10) // first slot already underway

	views := AvailableSlots(w, day, booked, now)
	if len(views) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(views))
	}

	wantStates := []SlotState{SlotPast, SlotOpen, SlotBooked, SlotOpen}
	for i, want := range wantStates {
		if views[i].State != want {
			t.Errorf("slot %d (%s): state = %s, want %s", i, views[i].Start.Format("15:04"), views[i].State, want)
		}
	}
}

func TestAvailableSlots_StartingNowIsPast(t *testing.T) {
	// A booking must start strictly in the future, so a slot starting at
	// this exact instant is already unbookable.
	w := recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0))

	views := AvailableSlots(w, day, nil, at(9, 0))
	if views[0].State != SlotPast {
		t.Errorf("slot starting at now: state = %s, want past", views[0].State)
	}
	if views[1].State != SlotOpen {
		t.Errorf("next slot: state = %s, want open", views[1].State)
	}
}

func TestAvailableSlots_PartialOverlapNotBooked(t *testing.T) {
	// An appointment straddling two slots matches neither exactly, so the
	// label stays open; the validator is what rejects the actual booking.
	w := recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0))
	booked := []Slot{{Start: at(9, 15), End: at(9, 45)}}

	views := AvailableSlots(w, day, booked, at(8, 0))
	for _, v := range views {
		if v.State != SlotOpen {
			t.Errorf("slot %s: state = %s, want open", v.Start.Format("15:04"), v.State)
		}
	}
}
