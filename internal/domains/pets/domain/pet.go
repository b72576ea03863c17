package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Gender records the pet's registered gender.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Pet represents the aggregate managed by the pets bounded context.
// Available mirrors the adoption record store: true iff no active adoption
// record references the pet. Only the reconciliation service flips it.
type Pet struct {
	ID           string
	Name         string
	Gender       Gender
	Variety      string
	ShelterName  string
	ImageURL     string
	Introduction string
	Available    bool
}

var (
	ErrEmptyName    = errors.New("pet name is required")
	ErrEmptyVariety = errors.New("pet variety is required")
	ErrEmptyShelter = errors.New("shelter name is required")
)

// Status names for the derived availability states.
const (
	StatusAvailable = "available"
	StatusAdopted   = "adopted"
)

// NewPet validates the invariants and builds a new Pet aggregate.
// An empty id is replaced with a fresh UUID. New pets start available.
func NewPet(id, name, variety, shelterName string) (*Pet, error) {
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	p := &Pet{ID: id, Available: true}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.UpdateVariety(variety); err != nil {
		return nil, err
	}
	if err := p.Relocate(shelterName); err != nil {
		return nil, err
	}
	p.UpdateGender("")
	return p, nil
}

// Rename mutates the pet name ensuring the invariant.
func (p *Pet) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// UpdateVariety records the breed or variety.
func (p *Pet) UpdateVariety(variety string) error {
	if strings.TrimSpace(variety) == "" {
		return ErrEmptyVariety
	}
	p.Variety = variety
	return nil
}

// Relocate records the shelter currently housing the pet.
func (p *Pet) Relocate(shelterName string) error {
	if strings.TrimSpace(shelterName) == "" {
		return ErrEmptyShelter
	}
	p.ShelterName = shelterName
	return nil
}

// UpdateGender validates known gender values, defaulting to unknown.
func (p *Pet) UpdateGender(gender Gender) {
	switch gender {
	case GenderMale, GenderFemale, GenderUnknown:
		p.Gender = gender
	default:
		p.Gender = GenderUnknown
	}
}

// UpdateImage stores the catalog image reference. Empty clears it.
func (p *Pet) UpdateImage(url string) {
	p.ImageURL = strings.TrimSpace(url)
}

// Describe stores the free-text introduction. Empty clears it.
func (p *Pet) Describe(introduction string) {
	p.Introduction = introduction
}

// Status derives the lifecycle state from the availability flag.
func (p *Pet) Status() string {
	if p.Available {
		return StatusAvailable
	}
	return StatusAdopted
}
