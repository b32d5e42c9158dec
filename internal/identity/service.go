package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("role must be doctor or patient")
)

type RegisterParams struct {
	Email     string
	Password  string
	Name      string
	Role      Role
	Specialty string // doctor only
	Phone     string // patient only
}

// Service handles registration and login. Registration creates the role
// profile together with the user, replacing the hidden profile-on-signal
// side effect the booking flows used to depend on.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	if !params.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: string(hash),
		Name:         params.Name,
		Role:         params.Role,
	}

	var doctor *Doctor
	var patient *Patient
	switch params.Role {
	case RoleDoctor:
		// New doctors start unapproved and become bookable once an
		// administrator flips the flag.
		doctor = &Doctor{
			ID:        uuid.New(),
			UserID:    user.ID,
			Specialty: params.Specialty,
			Approved:  false,
		}
	case RolePatient:
		patient = &Patient{
			ID:     uuid.New(),
			UserID: user.ID,
		}
		if params.Phone != "" {
			phone := params.Phone
			patient.Phone = &phone
		}
	}

	if err := s.repo.CreateUserWithProfile(ctx, user, doctor, patient); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns a signed bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	principal, err := s.principalFor(ctx, user)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(principal)
}

func (s *Service) principalFor(ctx context.Context, user *User) (Principal, error) {
	p := Principal{UserID: user.ID, Role: user.Role}
	switch user.Role {
	case RoleDoctor:
		doc, err := s.repo.GetDoctorByUserID(ctx, user.ID)
		if err != nil {
			return Principal{}, fmt.Errorf("load doctor profile: %w", err)
		}
		p.ProfileID = doc.ID
	case RolePatient:
		pat, err := s.repo.GetPatientByUserID(ctx, user.ID)
		if err != nil {
			return Principal{}, fmt.Errorf("load patient profile: %w", err)
		}
		p.ProfileID = pat.ID
	default:
		return Principal{}, ErrInvalidRole
	}
	return p, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

// ListDoctors returns bookable doctors, optionally filtered by name or
// specialty substring.
func (s *Service) ListDoctors(ctx context.Context, name, specialty string) ([]Doctor, error) {
	return s.repo.ListDoctors(ctx, DoctorFilter{
		Name:         name,
		Specialty:    specialty,
		ApprovedOnly: true,
	})
}
