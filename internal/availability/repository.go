package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrWindowNotFound = errors.New("availability window not found")
)

// Repository contains all DB interactions needed by the store.
type Repository interface {
	Insert(ctx context.Context, w *AvailabilityWindow) error
	Update(ctx context.Context, w *AvailabilityWindow) error
	GetByID(ctx context.Context, id uuid.UUID) (*AvailabilityWindow, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityWindow, error)
}
