package application

import (
	"errors"
	"fmt"

	"github.com/pawhaven/adoption-api/internal/domains/pets/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid pet input")

// ErrHasActiveAdoption signals a delete attempt against a pet that an active
// adoption record still references.
var ErrHasActiveAdoption = errors.New("pet has an active adoption record")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptyVariety) ||
		errors.Is(err, domain.ErrEmptyShelter) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
