package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInterval     = errors.New("window start must be before end")
	ErrInvalidSlotDuration = errors.New("slot duration must be between 5 and 240 minutes")
	ErrPastDate            = errors.New("window date is in the past")
	ErrOverlappingWindow   = errors.New("window overlaps an existing availability window")
	ErrNotOwner            = errors.New("window belongs to another doctor")
	ErrInvalidWeekday      = errors.New("invalid weekday")
)

// Store owns declared availability windows and enforces their invariants:
// ordered time ranges, no past dated windows, and pairwise-disjoint windows
// per doctor and day-key.
type Store struct {
	repo Repository
	now  func() time.Time
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// Declare validates and persists a new window for the doctor.
func (s *Store) Declare(ctx context.Context, doctorID uuid.UUID, w AvailabilityWindow) (*AvailabilityWindow, error) {
	w.ID = uuid.New()
	w.DoctorID = doctorID

	if err := s.validate(ctx, &w, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, &w); err != nil {
		return nil, fmt.Errorf("insert window: %w", err)
	}
	return &w, nil
}

// Update re-validates a window in place. Only the owning doctor may update;
// the window itself is excluded from the overlap scan.
func (s *Store) Update(ctx context.Context, doctorID, windowID uuid.UUID, w AvailabilityWindow) (*AvailabilityWindow, error) {
	existing, err := s.repo.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if existing.DoctorID != doctorID {
		return nil, ErrNotOwner
	}

	w.ID = existing.ID
	w.DoctorID = existing.DoctorID
	w.CreatedAt = existing.CreatedAt

	if err := s.validate(ctx, &w, w.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &w); err != nil {
		return nil, fmt.Errorf("update window: %w", err)
	}
	return &w, nil
}

// Delete removes a window. A window owned by someone else is reported as an
// authorization failure, not as missing.
func (s *Store) Delete(ctx context.Context, doctorID, windowID uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, windowID)
	if err != nil {
		return err
	}
	if existing.DoctorID != doctorID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, windowID)
}

// List returns the doctor's windows. Owners see everything including expired
// dated windows; other callers only see windows that can still produce
// bookable slots.
func (s *Store) List(ctx context.Context, doctorID uuid.UUID, includePast bool) ([]AvailabilityWindow, error) {
	windows, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if includePast {
		return windows, nil
	}

	today := dateOnly(s.now())
	var visible []AvailabilityWindow
	for _, w := range windows {
		if w.Kind == KindDated && dateOnly(w.Date).Before(today) {
			continue
		}
		visible = append(visible, w)
	}
	return visible, nil
}

// WindowsFor exposes the raw window set for the booking validator.
func (s *Store) WindowsFor(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityWindow, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *Store) validate(ctx context.Context, w *AvailabilityWindow, excluding uuid.UUID) error {
	if w.Start >= w.End {
		return ErrInvalidInterval
	}

	switch w.Kind {
	case KindRecurring:
		if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
			return ErrInvalidWeekday
		}
	case KindDated:
		if w.SlotDuration < MinSlotDuration || w.SlotDuration > MaxSlotDuration {
			return ErrInvalidSlotDuration
		}
		if dateOnly(w.Date).Before(dateOnly(s.now())) {
			return ErrPastDate
		}
	default:
		return fmt.Errorf("unknown window kind %q", w.Kind)
	}

	siblings, err := s.repo.ListByDoctor(ctx, w.DoctorID)
	if err != nil {
		return fmt.Errorf("list windows for overlap check: %w", err)
	}
	for _, other := range siblings {
		if other.ID == excluding {
			continue
		}
		if w.OverlapsWindow(other) {
			return ErrOverlappingWindow
		}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
