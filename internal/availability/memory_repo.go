package availability

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and the booking
// simulator. It mirrors the Postgres implementation's semantics.
type MemoryRepository struct {
	mu      sync.RWMutex
	windows map[uuid.UUID]AvailabilityWindow
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{windows: make(map[uuid.UUID]AvailabilityWindow)}
}

func (m *MemoryRepository) Insert(_ context.Context, w *AvailabilityWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now
	m.windows[w.ID] = *w
	return nil
}

func (m *MemoryRepository) Update(_ context.Context, w *AvailabilityWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.windows[w.ID]; !ok {
		return ErrWindowNotFound
	}
	w.UpdatedAt = time.Now()
	m.windows[w.ID] = *w
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*AvailabilityWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.windows[id]
	if !ok {
		return nil, ErrWindowNotFound
	}
	return &w, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.windows[id]; !ok {
		return ErrWindowNotFound
	}
	delete(m.windows, id)
	return nil
}

func (m *MemoryRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]AvailabilityWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []AvailabilityWindow
	for _, w := range m.windows {
		if w.DoctorID == doctorID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Start < result[j].Start
	})
	return result, nil
}
