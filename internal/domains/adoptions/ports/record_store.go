package ports

import (
	"context"
	"errors"

	"github.com/pawhaven/adoption-api/internal/domains/adoptions/domain"
	"github.com/pawhaven/adoption-api/internal/shared/projection"
)

var (
	ErrNotFound = errors.New("adoption record not found")
	// ErrDuplicate is the uniqueness-constraint signal: an active record
	// already references the pet. It is the sole source of mutual exclusion
	// between concurrent submissions and must be enforced atomically by the
	// storage layer, never emulated with read-then-write logic.
	ErrDuplicate = errors.New("active adoption record already exists for pet")
)

// RecordProjection is an adoption record plus persistence metadata.
type RecordProjection = projection.Projection[*domain.Record]

// RecordStore persists adoption records.
type RecordStore interface {
	// Create inserts the record, failing with ErrDuplicate when an active
	// record already references the same pet.
	Create(ctx context.Context, record *domain.Record) (*RecordProjection, error)
	GetByID(ctx context.Context, id string) (*RecordProjection, error)
	Delete(ctx context.Context, id string) error
	// FindActiveForPet returns nil, nil when no active record references the pet.
	FindActiveForPet(ctx context.Context, petID string) (*RecordProjection, error)
	ListByUser(ctx context.Context, userID string) ([]*RecordProjection, error)
	ListActive(ctx context.Context) ([]*RecordProjection, error)
}
