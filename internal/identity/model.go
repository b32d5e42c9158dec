package identity

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Doctor is the provider profile attached to a doctor user. Name and Email
// are denormalized from the user row by the repository.
type Doctor struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Email     string
	Specialty string
	Approved  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Email       string
	Phone       *string
	DateOfBirth *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Principal is the authenticated caller. ProfileID is the doctor or patient
// ID matching Role, so role dispatch is a typed check rather than a string
// comparison against request payloads.
type Principal struct {
	UserID    uuid.UUID
	Role      Role
	ProfileID uuid.UUID
}

func (p Principal) IsDoctor() bool  { return p.Role == RoleDoctor }
func (p Principal) IsPatient() bool { return p.Role == RolePatient }
