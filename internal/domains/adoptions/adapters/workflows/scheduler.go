package workflows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
	repairworkflows "github.com/pawhaven/adoption-api/internal/platform/temporal/workflows/adoptions"
)

var (
	_ ports.RepairScheduler = (*TemporalRepairScheduler)(nil)
	_ ports.RepairScheduler = (*LogOnlyRepairScheduler)(nil)
)

// TemporalRepairScheduler starts durable repair workflows on a Temporal
// cluster. The workflow ID is derived from the pet, so repeated degradations
// for the same pet collapse into one running repair.
type TemporalRepairScheduler struct {
	client    client.Client
	taskQueue string
}

// NewTemporalRepairScheduler wires a Temporal client into the scheduler.
func NewTemporalRepairScheduler(c client.Client) *TemporalRepairScheduler {
	return &TemporalRepairScheduler{client: c, taskQueue: repairworkflows.RepairTaskQueue}
}

// ScheduleRepair starts the availability repair workflow for the pet. It does
// not wait for completion; the worker owns the retry lifecycle from here.
func (s *TemporalRepairScheduler) ScheduleRepair(ctx context.Context, petID string) error {
	if s == nil || s.client == nil {
		return errors.New("temporal repair scheduler not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("adoption-repair-%s", petID),
		TaskQueue: s.taskQueue,
	}
	input := repairworkflows.AvailabilityRepairWorkflowInput{
		PetID:   petID,
		TraceID: workflowTraceID(ctx),
	}
	_, err := s.client.ExecuteWorkflow(ctx, options, repairworkflows.AvailabilityRepairWorkflow, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			// A repair for this pet is already in flight.
			return nil
		}
		return err
	}
	return nil
}

// LogOnlyRepairScheduler is the fallback when durable orchestration is
// unavailable. The degraded state is already logged with both entity ids by
// the reconciliation service; this adds a marker for operators sweeping logs.
type LogOnlyRepairScheduler struct {
	logger *slog.Logger
}

// NewLogOnlyRepairScheduler builds the fallback scheduler.
func NewLogOnlyRepairScheduler(logger *slog.Logger) *LogOnlyRepairScheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogOnlyRepairScheduler{logger: logger}
}

// ScheduleRepair records that a repair is needed. The periodic reconciler
// sweep picks it up.
func (s *LogOnlyRepairScheduler) ScheduleRepair(ctx context.Context, petID string) error {
	s.logger.LogAttrs(ctx, slog.LevelWarn, "availability repair deferred to reconciler sweep",
		slog.String("pet.id", petID),
		slog.Time("deferred_at", time.Now()))
	return nil
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
