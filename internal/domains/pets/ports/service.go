package ports

import "context"

// CreatePetInput carries the administrative upload payload.
type CreatePetInput struct {
	ID           string
	Name         string
	Gender       string
	Variety      string
	ShelterName  string
	ImageURL     string
	Introduction string
}

// UpdatePetInput carries a partial catalog mutation. Nil fields are left
// untouched. Availability is deliberately absent: only the reconciliation
// service mutates it.
type UpdatePetInput struct {
	ID           string
	Name         *string
	Gender       *string
	Variety      *string
	ShelterName  *string
	ImageURL     *string
	Introduction *string
}

// Service exposes the pets bounded context use cases.
type Service interface {
	CreatePet(ctx context.Context, input CreatePetInput) (*PetProjection, error)
	UpdatePet(ctx context.Context, input UpdatePetInput) (*PetProjection, error)
	GetByID(ctx context.Context, id string) (*PetProjection, error)
	Delete(ctx context.Context, id string) error
	FindAvailable(ctx context.Context) ([]*PetProjection, error)
	List(ctx context.Context) ([]*PetProjection, error)
}

// AdoptionChecker is the collaborator port guarding pet deletion: a pet is
// never deleted while an active adoption record references it.
type AdoptionChecker interface {
	HasActiveRecordForPet(ctx context.Context, petID string) (bool, error)
}
