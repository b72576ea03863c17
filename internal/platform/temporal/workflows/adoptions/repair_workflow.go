package adoptions

import (
	"go.temporal.io/sdk/workflow"

	"github.com/pawhaven/adoption-api/internal/platform/temporal/sequences"
)

const (
	// AvailabilityRepairWorkflowName is the public identifier for registering the workflow.
	AvailabilityRepairWorkflowName = "adoptions.workflows.AvailabilityRepair"
	// RepairTaskQueue is the queue consumed by the worker processing repair workflows.
	RepairTaskQueue = "ADOPTION_RECONCILIATION"
)

// AvailabilityRepairWorkflowInput identifies the pet to repair, plus the
// trace that degraded into out-of-band repair.
type AvailabilityRepairWorkflowInput struct {
	PetID   string
	TraceID string
}

// AvailabilityRepairWorkflow drives the durable half of the reconciliation
// protocol: retry the availability recomputation until it lands.
func AvailabilityRepairWorkflow(ctx workflow.Context, input AvailabilityRepairWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("AvailabilityRepairWorkflow started", withTraceID(input.TraceID, "petId", input.PetID)...)
	if err := sequences.RunAvailabilityRepairSequence(ctx, input.PetID); err != nil {
		logger.Error("AvailabilityRepairWorkflow failed", withTraceID(input.TraceID, "petId", input.PetID, "error", err)...)
		return err
	}
	logger.Info("AvailabilityRepairWorkflow completed", withTraceID(input.TraceID, "petId", input.PetID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
