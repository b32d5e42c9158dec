package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testStore() (*Store, uuid.UUID) {
	s := NewStore(NewMemoryRepository())
	// Fixed clock: the Monday before the shared test Tuesday.
	s.now = func() time.Time { return day.AddDate(0, 0, -1) }
	return s, uuid.New()
}

func TestDeclare_Recurring(t *testing.T) {
	s, doctorID := testStore()

	w, err := s.Declare(context.Background(), doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(12, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.ID == uuid.Nil {
		t.Error("expected a generated window ID")
	}
	if w.DoctorID != doctorID {
		t.Error("window not assigned to the declaring doctor")
	}
}

func TestDeclare_RejectsInvertedInterval(t *testing.T) {
	s, doctorID := testStore()

	_, err := s.Declare(context.Background(), doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(12, 0), NewTimeOfDay(9, 0)))
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}

	_, err = s.Declare(context.Background(), doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(9, 0)))
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval for zero-length window, got %v", err)
	}
}

func TestDeclare_RejectsBadSlotDuration(t *testing.T) {
	s, doctorID := testStore()

	for _, slot := range []time.Duration{0, 4 * time.Minute, 241 * time.Minute} {
		_, err := s.Declare(context.Background(), doctorID, datedWindow(day, NewTimeOfDay(9, 0), NewTimeOfDay(12, 0), slot))
		if !errors.Is(err, ErrInvalidSlotDuration) {
			t.Errorf("slot %s: expected ErrInvalidSlotDuration, got %v", slot, err)
		}
	}

	for _, slot := range []time.Duration{5 * time.Minute, 240 * time.Minute} {
		if _, err := s.Declare(context.Background(), uuid.New(), datedWindow(day, NewTimeOfDay(8, 0), NewTimeOfDay(13, 0), slot)); err != nil {
			t.Errorf("slot %s should be accepted at the bound, got %v", slot, err)
		}
	}
}

func TestDeclare_RejectsPastDate(t *testing.T) {
	s, doctorID := testStore()

	_, err := s.Declare(context.Background(), doctorID, datedWindow(day.AddDate(0, 0, -7), NewTimeOfDay(9, 0), NewTimeOfDay(12, 0), 30*time.Minute))
	if !errors.Is(err, ErrPastDate) {
		t.Errorf("expected ErrPastDate, got %v", err)
	}

	// Same-day declarations are fine.
	if _, err := s.Declare(context.Background(), doctorID, datedWindow(day.AddDate(0, 0, -1), NewTimeOfDay(9, 0), NewTimeOfDay(12, 0), 30*time.Minute)); err != nil {
		t.Errorf("today's date should be accepted, got %v", err)
	}
}

func TestDeclare_RejectsOverlap(t *testing.T) {
	s, doctorID := testStore()
	ctx := context.Background()

	if _, err := s.Declare(ctx, doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0))); err != nil {
		t.Fatalf("declare first window: %v", err)
	}

	_, err := s.Declare(ctx, doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(9, 30), NewTimeOfDay(11, 0)))
	if !errors.Is(err, ErrOverlappingWindow) {
		t.Errorf("expected ErrOverlappingWindow, got %v", err)
	}

	// Back-to-back is allowed.
	if _, err := s.Declare(ctx, doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(10, 0), NewTimeOfDay(11, 0))); err != nil {
		t.Errorf("adjacent window should be accepted, got %v", err)
	}

	// Another doctor's calendar is independent.
	if _, err := s.Declare(ctx, uuid.New(), recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0))); err != nil {
		t.Errorf("other doctor's identical window should be accepted, got %v", err)
	}
}

func TestUpdate_ExcludesSelfFromOverlapScan(t *testing.T) {
	s, doctorID := testStore()
	ctx := context.Background()

	w, err := s.Declare(ctx, doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0)))
	if err != nil {
		t.Fatalf("declare: %v", err)
	}

	// Widening the window overlaps only itself, which must be allowed.
	updated, err := s.Update(ctx, doctorID, w.ID, recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(11, 0)))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.End != NewTimeOfDay(11, 0) {
		t.Errorf("expected end 11:00, got %s", updated.End)
	}
}

func TestUpdate_ForeignWindow(t *testing.T) {
	s, doctorID := testStore()
	ctx := context.Background()

	w, err := s.Declare(ctx, doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0)))
	if err != nil {
		t.Fatalf("declare: %v", err)
	}

	_, err = s.Update(ctx, uuid.New(), w.ID, recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(11, 0)))
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s, doctorID := testStore()
	ctx := context.Background()

	w, err := s.Declare(ctx, doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(9, 0), NewTimeOfDay(10, 0)))
	if err != nil {
		t.Fatalf("declare: %v", err)
	}

	if err := s.Delete(ctx, uuid.New(), w.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner for foreign delete, got %v", err)
	}

	if err := s.Delete(ctx, doctorID, w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, doctorID, w.ID); !errors.Is(err, ErrWindowNotFound) {
		t.Errorf("expected ErrWindowNotFound after delete, got %v", err)
	}
}

func TestList_FiltersExpiredDatedWindows(t *testing.T) {
	s, doctorID := testStore()
	ctx := context.Background()

	// Declare while the clock is far in the past, then advance it.
	s.now = func() time.Time { return day.AddDate(0, -1, 0) }
	if _, err := s.Declare(ctx, doctorID, datedWindow(day.AddDate(0, 0, -7), NewTimeOfDay(9, 0), NewTimeOfDay(12, 0), 30*time.Minute)); err != nil {
		t.Fatalf("declare dated: %v", err)
	}
	if _, err := s.Declare(ctx, doctorID, recurringWindow(time.Tuesday, NewTimeOfDay(14, 0), NewTimeOfDay(16, 0))); err != nil {
		t.Fatalf("declare recurring: %v", err)
	}
	s.now = func() time.Time { return day }

	visible, err := s.List(ctx, doctorID, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].Kind != KindRecurring {
		t.Errorf("expected only the recurring window for non-owners, got %d windows", len(visible))
	}

	all, err := s.List(ctx, doctorID, true)
	if err != nil {
		t.Fatalf("list with past: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected owner to see both windows, got %d", len(all))
	}
}
