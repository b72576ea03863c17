package ports

import "context"

// RepairScheduler enqueues out-of-band repair for a pet whose availability
// flag could not be reconciled within the in-process retry budget.
type RepairScheduler interface {
	ScheduleRepair(ctx context.Context, petID string) error
}
