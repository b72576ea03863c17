package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pawhaven/adoption-api/internal/domains/adoptions/domain"
	"github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
	petports "github.com/pawhaven/adoption-api/internal/domains/pets/ports"
)

// DefaultFlipAttempts bounds the in-process retries of the availability flip.
// The first attempt plus two retries; beyond that the inconsistency is handed
// to out-of-band repair.
const DefaultFlipAttempts = 3

// Service is the adoption reconciliation core. It composes two atomic
// single-store operations, the record store's uniqueness constraint and the
// pet store's conditional write, and keeps the cross-entity invariant:
// a pet is available iff no active adoption record references it.
//
// The service holds no application-level lock. The record uniqueness
// constraint is the sole source of mutual exclusion between concurrent
// submissions.
type Service struct {
	pets         petports.Repository
	records      ports.RecordStore
	repairs      ports.RepairScheduler
	logger       *slog.Logger
	flipAttempts uint64
	newBackOff   func() backoff.BackOff
}

// Option configures optional collaborators.
type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRepairScheduler wires durable out-of-band repair for exhausted retries.
func WithRepairScheduler(scheduler ports.RepairScheduler) Option {
	return func(s *Service) {
		s.repairs = scheduler
	}
}

// WithFlipAttempts overrides the availability-flip attempt budget.
func WithFlipAttempts(attempts uint64) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.flipAttempts = attempts
		}
	}
}

// WithBackOff overrides the backoff factory, mainly so tests avoid real waits.
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(s *Service) {
		if factory != nil {
			s.newBackOff = factory
		}
	}
}

// NewService wires the reconciliation service with its two stores.
func NewService(pets petports.Repository, records ports.RecordStore, opts ...Option) *Service {
	s := &Service{
		pets:         pets,
		records:      records,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		flipAttempts: DefaultFlipAttempts,
		newBackOff:   defaultBackOff,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

// SubmitAdoption creates an adoption record for the pet and flips its
// availability. Exactly one of two concurrent submissions against the same
// pet can win: the loser's record insert hits the uniqueness constraint and
// is reported as ErrAlreadyAdopted, indistinguishable from arriving late.
func (s *Service) SubmitAdoption(ctx context.Context, input ports.SubmitAdoptionInput) (*ports.RecordProjection, error) {
	proj, err := s.pets.GetByID(ctx, input.PetID)
	if err != nil {
		if errors.Is(err, petports.ErrNotFound) {
			return nil, fmt.Errorf("%w: pet %s", ErrNotFound, input.PetID)
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !proj.Entity.Available {
		return nil, ErrAlreadyAdopted
	}

	record, err := domain.NewRecord(input.PetID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	saved, err := s.records.Create(ctx, record)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			// A concurrent submission won the race. Collapse it into the
			// same terminal error a sequential caller would see.
			return nil, ErrAlreadyAdopted
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	// The record now exists; the invariant is violated until the flip lands.
	if err := s.flipAvailability(ctx, input.PetID, false); err != nil {
		if errors.Is(err, petports.ErrConflict) {
			// Should be unreachable given the uniqueness guarantee, but
			// handled defensively: undo the record and report terminal.
			s.compensateRecord(ctx, saved.Entity)
			return nil, ErrAlreadyAdopted
		}
		return nil, s.degradeToPending(ctx, input.PetID, saved.Entity.ID, err)
	}
	return saved, nil
}

// CancelAdoption deletes the record and restores the pet's availability.
// Ownership failures surface ErrNotFound, never a forbidden error, so the
// existence of other users' records does not leak.
func (s *Service) CancelAdoption(ctx context.Context, input ports.CancelAdoptionInput) error {
	proj, err := s.records.GetByID(ctx, input.RecordID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("%w: record %s", ErrNotFound, input.RecordID)
		}
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	record := proj.Entity
	if !input.AdminOverride && !record.BelongsTo(input.RequestedBy) {
		return fmt.Errorf("%w: record %s", ErrNotFound, input.RecordID)
	}

	if err := s.records.Delete(ctx, input.RecordID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// Lost a race against another cancellation; nothing to undo.
			return fmt.Errorf("%w: record %s", ErrNotFound, input.RecordID)
		}
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := s.flipAvailability(ctx, record.PetID, true); err != nil {
		if errors.Is(err, petports.ErrConflict) {
			// The flag already reads available, so the invariant holds.
			s.logger.LogAttrs(ctx, slog.LevelDebug, "availability already restored",
				slog.String("pet.id", record.PetID), slog.String("record.id", record.ID))
			return nil
		}
		if errors.Is(err, petports.ErrNotFound) {
			// Pet removed concurrently; no flag left to restore.
			return nil
		}
		return s.degradeToPending(ctx, record.PetID, record.ID, err)
	}
	return nil
}

// ListByUser returns the caller's active adoption records.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*ports.RecordProjection, error) {
	list, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return list, nil
}

// HasActiveRecordForPet reports whether an active record references the pet.
func (s *Service) HasActiveRecordForPet(ctx context.Context, petID string) (bool, error) {
	record, err := s.records.FindActiveForPet(ctx, petID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return record != nil, nil
}

// RepairPet recomputes the availability flag from record existence. The
// record store is the source of truth; the flag follows it. Conflicts mean a
// concurrent writer already moved the flag, which is treated as repaired.
func (s *Service) RepairPet(ctx context.Context, petID string) error {
	record, err := s.records.FindActiveForPet(ctx, petID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	want := record == nil

	proj, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, petports.ErrNotFound) {
			return fmt.Errorf("%w: pet %s", ErrNotFound, petID)
		}
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if proj.Entity.Available == want {
		return nil
	}

	s.logger.LogAttrs(ctx, slog.LevelWarn, "repairing inconsistent availability",
		slog.String("pet.id", petID), slog.Bool("available.want", want))
	if _, err := s.pets.SetAvailability(ctx, petID, want, !want); err != nil {
		if errors.Is(err, petports.ErrConflict) || errors.Is(err, petports.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// Sweep repairs every pet whose flag disagrees with the record store and
// returns how many were touched. Used by the out-of-band reconciler.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	pets, err := s.pets.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	repaired := 0
	for _, proj := range pets {
		record, err := s.records.FindActiveForPet(ctx, proj.Entity.ID)
		if err != nil {
			return repaired, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		want := record == nil
		if proj.Entity.Available == want {
			continue
		}
		if err := s.RepairPet(ctx, proj.Entity.ID); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}

// flipAvailability drives the conditional write with bounded exponential
// backoff. Conflicts and missing pets are terminal; everything else retries
// until the attempt budget runs out.
func (s *Service) flipAvailability(ctx context.Context, petID string, available bool) error {
	operation := func() error {
		_, err := s.pets.SetAvailability(ctx, petID, available, !available)
		if err == nil {
			return nil
		}
		if errors.Is(err, petports.ErrConflict) || errors.Is(err, petports.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.flipAttempts-1), ctx)
	return backoff.Retry(operation, policy)
}

// compensateRecord undoes a just-created record after a defensive conflict.
// Best effort: a failure here leaves the same pending state the retry path
// degrades into, so it is logged at error level with both entity ids.
func (s *Service) compensateRecord(ctx context.Context, record *domain.Record) {
	if err := s.records.Delete(ctx, record.ID); err != nil && !errors.Is(err, ports.ErrNotFound) {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to compensate adoption record",
			slog.String("pet.id", record.PetID),
			slog.String("record.id", record.ID),
			slog.String("error", err.Error()))
		s.scheduleRepair(ctx, record.PetID)
	}
}

// degradeToPending is the single explicit partial-failure path: the record
// mutation committed but the flag did not follow. Both entity ids are logged
// for manual reconciliation and durable repair is scheduled when available.
func (s *Service) degradeToPending(ctx context.Context, petID, recordID string, cause error) error {
	s.logger.LogAttrs(ctx, slog.LevelError, "availability flip exhausted retries",
		slog.String("pet.id", petID),
		slog.String("record.id", recordID),
		slog.String("error", cause.Error()))
	s.scheduleRepair(ctx, petID)
	return fmt.Errorf("%w: pet %s record %s: %w", ErrReconciliationPending, petID, recordID, cause)
}

func (s *Service) scheduleRepair(ctx context.Context, petID string) {
	if s.repairs == nil {
		return
	}
	if err := s.repairs.ScheduleRepair(ctx, petID); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to schedule availability repair",
			slog.String("pet.id", petID), slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
