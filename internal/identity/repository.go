package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrEmailTaken      = errors.New("email is already registered")
)

type DoctorFilter struct {
	Specialty    string
	Name         string
	ApprovedOnly bool
}

// Repository contains all DB interactions needed by the identity service.
type Repository interface {
	// CreateUserWithProfile inserts the user and its doctor or patient
	// profile atomically. Exactly one of doctor/patient is non-nil,
	// matching the user's role.
	CreateUserWithProfile(ctx context.Context, u *User, d *Doctor, p *Patient) error

	GetUserByEmail(ctx context.Context, email string) (*User, error)

	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context, filter DoctorFilter) ([]Doctor, error)

	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
}
