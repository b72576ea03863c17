package application

import (
	"context"

	"github.com/pawhaven/adoption-api/internal/domains/pets/domain"
	"github.com/pawhaven/adoption-api/internal/domains/pets/ports"
)

// Service orchestrates the pets bounded context use cases: the catalog side
// of the platform. Availability mutations go through the reconciliation
// service, never through here.
type Service struct {
	repo      ports.Repository
	adoptions ports.AdoptionChecker
}

// Option configures optional collaborators.
type Option func(*Service)

// WithAdoptionChecker wires the delete guard against active adoption records.
func WithAdoptionChecker(checker ports.AdoptionChecker) Option {
	return func(s *Service) {
		s.adoptions = checker
	}
}

// NewService wires the pets service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreatePet persists a new pet aggregate from an administrative upload.
func (s *Service) CreatePet(ctx context.Context, input ports.CreatePetInput) (*ports.PetProjection, error) {
	pet, err := domain.NewPet(input.ID, input.Name, input.Variety, input.ShelterName)
	if err != nil {
		return nil, mapError(err)
	}
	pet.UpdateGender(domain.Gender(input.Gender))
	pet.UpdateImage(input.ImageURL)
	pet.Describe(input.Introduction)
	saved, err := s.repo.Save(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// UpdatePet applies a partial catalog mutation to an existing pet.
func (s *Service) UpdatePet(ctx context.Context, input ports.UpdatePetInput) (*ports.PetProjection, error) {
	proj, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	pet := proj.Entity
	if err := applyPartialMutation(pet, input); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// GetByID loads a single pet aggregate.
func (s *Service) GetByID(ctx context.Context, id string) (*ports.PetProjection, error) {
	proj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return proj, nil
}

// Delete removes a pet unless an active adoption record references it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.adoptions != nil {
		active, err := s.adoptions.HasActiveRecordForPet(ctx, id)
		if err != nil {
			return err
		}
		if active {
			return ErrHasActiveAdoption
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	return nil
}

// FindAvailable lists pets open for adoption.
func (s *Service) FindAvailable(ctx context.Context) ([]*ports.PetProjection, error) {
	result, err := s.repo.FindAvailable(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// List exposes the full catalog for admin use cases.
func (s *Service) List(ctx context.Context) ([]*ports.PetProjection, error) {
	result, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func applyPartialMutation(target *domain.Pet, input ports.UpdatePetInput) error {
	if input.Name != nil {
		if err := target.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Variety != nil {
		if err := target.UpdateVariety(*input.Variety); err != nil {
			return err
		}
	}
	if input.ShelterName != nil {
		if err := target.Relocate(*input.ShelterName); err != nil {
			return err
		}
	}
	if input.Gender != nil {
		target.UpdateGender(domain.Gender(*input.Gender))
	}
	if input.ImageURL != nil {
		target.UpdateImage(*input.ImageURL)
	}
	if input.Introduction != nil {
		target.Describe(*input.Introduction)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
