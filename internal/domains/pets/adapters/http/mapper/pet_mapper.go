package mapper

import (
	"time"

	"github.com/pawhaven/adoption-api/internal/domains/pets/ports"
)

// Pet is the HTTP representation of a catalog entry. Status is derived from
// the availability flag so clients never see the raw boolean drift.
type Pet struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Gender       string    `json:"gender,omitempty"`
	Variety      string    `json:"variety"`
	ShelterName  string    `json:"shelterName"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Introduction string    `json:"introduction,omitempty"`
	Available    bool      `json:"available"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// CreatePet captures the admin upload payload.
type CreatePet struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Gender       string `json:"gender,omitempty"`
	Variety      string `json:"variety"`
	ShelterName  string `json:"shelterName"`
	ImageURL     string `json:"imageUrl,omitempty"`
	Introduction string `json:"introduction,omitempty"`
}

// MutationPet captures partial update payloads while preserving field presence.
type MutationPet struct {
	Name         *string `json:"name,omitempty"`
	Gender       *string `json:"gender,omitempty"`
	Variety      *string `json:"variety,omitempty"`
	ShelterName  *string `json:"shelterName,omitempty"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	Introduction *string `json:"introduction,omitempty"`
}

// ToCreateInput converts the upload payload into an application input.
func ToCreateInput(model CreatePet) ports.CreatePetInput {
	return ports.CreatePetInput{
		ID:           model.ID,
		Name:         model.Name,
		Gender:       model.Gender,
		Variety:      model.Variety,
		ShelterName:  model.ShelterName,
		ImageURL:     model.ImageURL,
		Introduction: model.Introduction,
	}
}

// ToUpdateInput converts a mutation payload into an application input while
// preserving field presence.
func ToUpdateInput(id string, model MutationPet) ports.UpdatePetInput {
	input := ports.UpdatePetInput{ID: id}
	input.Name = clonePointer(model.Name)
	input.Gender = clonePointer(model.Gender)
	input.Variety = clonePointer(model.Variety)
	input.ShelterName = clonePointer(model.ShelterName)
	input.ImageURL = clonePointer(model.ImageURL)
	input.Introduction = clonePointer(model.Introduction)
	return input
}

// FromProjection maps a projection into a transport pet enriched with metadata.
func FromProjection(projection *ports.PetProjection) Pet {
	p := projection.Entity
	return Pet{
		ID:           p.ID,
		Name:         p.Name,
		Gender:       string(p.Gender),
		Variety:      p.Variety,
		ShelterName:  p.ShelterName,
		ImageURL:     p.ImageURL,
		Introduction: p.Introduction,
		Available:    p.Available,
		Status:       p.Status(),
		CreatedAt:    projection.Metadata.CreatedAt,
		UpdatedAt:    projection.Metadata.UpdatedAt,
	}
}

// FromProjectionList maps a slice of projections into transport pets.
func FromProjectionList(list []*ports.PetProjection) []Pet {
	result := make([]Pet, 0, len(list))
	for _, projection := range list {
		result = append(result, FromProjection(projection))
	}
	return result
}

func clonePointer(value *string) *string {
	if value == nil {
		return nil
	}
	copy := *value
	return &copy
}
