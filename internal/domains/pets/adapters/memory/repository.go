package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pawhaven/adoption-api/internal/domains/pets/domain"
	"github.com/pawhaven/adoption-api/internal/domains/pets/ports"
	"github.com/pawhaven/adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests. The mutex
// makes SetAvailability an atomic compare-and-set, matching the contract the
// Postgres adapter provides with a conditional UPDATE.
type Repository struct {
	mu   sync.RWMutex
	pets map[string]*storedPet
	now  func() time.Time
}

type storedPet struct {
	pet      *domain.Pet
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		pets: map[string]*storedPet{},
		now:  time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Save inserts or replaces a pet while maintaining metadata. The availability
// flag of an existing entry is preserved: it is owned by SetAvailability,
// matching the column exclusion in the Postgres upsert.
func (r *Repository) Save(_ context.Context, pet *domain.Pet) (*ports.PetProjection, error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.pets[pet.ID]
	timestamp := r.now()
	metadata := projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp}
	saved := clonePet(pet)
	if ok {
		metadata.CreatedAt = entry.metadata.CreatedAt
		saved.Available = entry.pet.Available
	}

	stored := &storedPet{pet: saved, metadata: metadata}
	r.pets[pet.ID] = stored
	return projectionCopy(stored), nil
}

// GetByID fetches a pet if present.
func (r *Repository) GetByID(_ context.Context, id string) (*ports.PetProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.pets[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// SetAvailability compare-and-sets the availability flag under the lock.
func (r *Repository) SetAvailability(_ context.Context, id string, available, expected bool) (*ports.PetProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.pets[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if entry.pet.Available != expected {
		return nil, ports.ErrConflict
	}
	entry.pet.Available = available
	entry.metadata.UpdatedAt = r.now()
	return projectionCopy(entry), nil
}

// Delete removes a pet.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.pets, id)
	return nil
}

// FindAvailable returns pets open for adoption.
func (r *Repository) FindAvailable(_ context.Context) ([]*ports.PetProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*ports.PetProjection
	for _, entry := range r.pets {
		if entry.pet.Available {
			list = append(list, projectionCopy(entry))
		}
	}
	return list, nil
}

// List returns all pets.
func (r *Repository) List(_ context.Context) ([]*ports.PetProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*ports.PetProjection, 0, len(r.pets))
	for _, entry := range r.pets {
		list = append(list, projectionCopy(entry))
	}
	return list, nil
}

func projectionCopy(entry *storedPet) *ports.PetProjection {
	return &ports.PetProjection{
		Entity:   clonePet(entry.pet),
		Metadata: entry.metadata,
	}
}

func clonePet(p *domain.Pet) *domain.Pet {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
