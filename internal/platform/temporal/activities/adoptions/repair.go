package adoptions

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
)

const (
	// RepairAvailabilityActivityName recomputes a pet's availability flag
	// from the adoption record store.
	RepairAvailabilityActivityName = "adoptions.activities.RepairAvailability"
)

// RepairInput identifies the pet whose availability flag needs repair.
type RepairInput struct {
	PetID string
}

// Activities groups activities that operate on the adoptions bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the reconciliation service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// RepairAvailability brings the pet's availability flag back in line with
// record existence. Idempotent, so Temporal retries are safe.
func (a *Activities) RepairAvailability(ctx context.Context, input RepairInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("repair activity not initialized", "petId", input.PetID)
		return errors.New("repair activity not initialized")
	}
	logger.Info("RepairAvailability activity started", "petId", input.PetID)
	if err := a.service.RepairPet(ctx, input.PetID); err != nil {
		logger.Error("RepairAvailability activity failed", "petId", input.PetID, "error", err)
		return err
	}
	logger.Info("RepairAvailability activity completed", "petId", input.PetID)
	return nil
}
