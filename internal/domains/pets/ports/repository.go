package ports

import (
	"context"
	"errors"

	"github.com/pawhaven/adoption-api/internal/domains/pets/domain"
	"github.com/pawhaven/adoption-api/internal/shared/projection"
)

var (
	ErrNotFound = errors.New("pet not found")
	// ErrConflict is the conditional-write signal: the availability flag did
	// not match the expected value at the time of the update. Callers
	// translate it, it never reaches the HTTP boundary.
	ErrConflict = errors.New("pet availability conflict")
)

// PetProjection is a pet aggregate plus persistence metadata.
type PetProjection = projection.Projection[*domain.Pet]

// Repository persists pet aggregates. SetAvailability must be atomic at the
// storage layer; it is the half of the reconciliation protocol this store
// contributes.
type Repository interface {
	Save(ctx context.Context, pet *domain.Pet) (*PetProjection, error)
	GetByID(ctx context.Context, id string) (*PetProjection, error)
	// SetAvailability performs a conditional single-row update: it succeeds
	// only when the stored flag equals expected, otherwise ErrConflict.
	SetAvailability(ctx context.Context, id string, available, expected bool) (*PetProjection, error)
	Delete(ctx context.Context, id string) error
	FindAvailable(ctx context.Context) ([]*PetProjection, error)
	List(ctx context.Context) ([]*PetProjection, error)
}
