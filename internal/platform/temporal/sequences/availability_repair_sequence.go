package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	adoptionactivities "github.com/pawhaven/adoption-api/internal/platform/temporal/activities/adoptions"
)

// RunAvailabilityRepairSequence executes the repair activity with a generous
// retry policy. The activity is idempotent, so every attempt converges toward
// the same state.
func RunAvailabilityRepairSequence(ctx workflow.Context, petID string) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("availability repair sequence started", "petId", petID)
	repairOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	input := adoptionactivities.RepairInput{PetID: petID}
	if err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, repairOptions),
		adoptionactivities.RepairAvailabilityActivityName,
		input,
	).Get(ctx, nil); err != nil {
		logger.Error("availability repair sequence failed", "petId", petID, "error", err)
		return err
	}
	logger.Info("availability repair sequence completed", "petId", petID)
	return nil
}
