package identity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests and the simulator.
type MemoryRepository struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]User
	doctors  map[uuid.UUID]Doctor
	patients map[uuid.UUID]Patient
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[uuid.UUID]User),
		doctors:  make(map[uuid.UUID]Doctor),
		patients: make(map[uuid.UUID]Patient),
	}
}

func (m *MemoryRepository) CreateUserWithProfile(_ context.Context, u *User, d *Doctor, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = *u

	switch {
	case d != nil:
		d.Name = u.Name
		d.Email = u.Email
		d.CreatedAt = now
		d.UpdatedAt = now
		m.doctors[d.ID] = *d
	case p != nil:
		p.Name = u.Name
		p.Email = u.Email
		p.CreatedAt = now
		p.UpdatedAt = now
		m.patients[p.ID] = *p
	}
	return nil
}

func (m *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryRepository) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (m *MemoryRepository) GetDoctorByUserID(_ context.Context, userID uuid.UUID) (*Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.doctors {
		if d.UserID == userID {
			doc := d
			return &doc, nil
		}
	}
	return nil, ErrDoctorNotFound
}

func (m *MemoryRepository) ListDoctors(_ context.Context, filter DoctorFilter) ([]Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Doctor
	for _, d := range m.doctors {
		if filter.ApprovedOnly && !d.Approved {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Specialty != "" && !strings.Contains(strings.ToLower(d.Specialty), strings.ToLower(filter.Specialty)) {
			continue
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MemoryRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (m *MemoryRepository) GetPatientByUserID(_ context.Context, userID uuid.UUID) (*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.patients {
		if p.UserID == userID {
			pat := p
			return &pat, nil
		}
	}
	return nil, ErrPatientNotFound
}

// ApproveDoctor flips the bookable flag, standing in for the admin screen.
func (m *MemoryRepository) ApproveDoctor(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.doctors[id]; ok {
		d.Approved = true
		m.doctors[id] = d
	}
}
