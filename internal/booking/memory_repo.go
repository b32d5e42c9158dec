package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory ledger store for tests and the simulator.
// Insert and Update enforce the same no-overlap guarantee the Postgres
// exclusion constraint provides.
type MemoryRepository struct {
	mu    sync.Mutex
	appts map[uuid.UUID]Appointment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{appts: make(map[uuid.UUID]Appointment)}
}

func (m *MemoryRepository) Insert(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.overlapsLocked(a.DoctorID, a.Start, a.End, a.ID) {
		return ErrSlotTaken
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	m.appts[a.ID] = *a
	return nil
}

func (m *MemoryRepository) Update(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appts[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	if m.overlapsLocked(a.DoctorID, a.Start, a.End, a.ID) {
		return ErrSlotTaken
	}
	a.UpdatedAt = time.Now()
	m.appts[a.ID] = *a
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appts[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *MemoryRepository) Overlapping(_ context.Context, doctorID uuid.UUID, start, end time.Time, excluding uuid.UUID) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Appointment
	for _, a := range m.appts {
		if a.DoctorID != doctorID || a.ID == excluding {
			continue
		}
		if a.Overlaps(start, end) {
			result = append(result, a)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *MemoryRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID && !a.Start.Before(from) && a.Start.Before(to) {
			result = append(result, a)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *MemoryRepository) ListByPatient(_ context.Context, patientID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID && !a.Start.Before(from) && a.Start.Before(to) {
			result = append(result, a)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *MemoryRepository) ListStartingBetween(_ context.Context, from, to time.Time) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Appointment
	for _, a := range m.appts {
		if !a.Start.Before(from) && a.Start.Before(to) {
			result = append(result, a)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *MemoryRepository) overlapsLocked(doctorID uuid.UUID, start, end time.Time, excluding uuid.UUID) bool {
	for _, a := range m.appts {
		if a.DoctorID != doctorID || a.ID == excluding {
			continue
		}
		if a.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func sortByStart(appts []Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		return appts[i].Start.Before(appts[j].Start)
	})
}
