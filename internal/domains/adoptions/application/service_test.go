package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adoptmemory "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/memory"
	"github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
	petmemory "github.com/pawhaven/adoption-api/internal/domains/pets/adapters/memory"
	petdomain "github.com/pawhaven/adoption-api/internal/domains/pets/domain"
	petports "github.com/pawhaven/adoption-api/internal/domains/pets/ports"
)

// flakyPetRepo injects SetAvailability failures around a real in-memory repo.
type flakyPetRepo struct {
	petports.Repository

	mu       sync.Mutex
	flipErr  error
	flipures int
}

func (r *flakyPetRepo) SetAvailability(ctx context.Context, id string, available, expected bool) (*petports.PetProjection, error) {
	r.mu.Lock()
	err := r.flipErr
	if err != nil {
		r.flipures++
	}
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.Repository.SetAvailability(ctx, id, available, expected)
}

func (r *flakyPetRepo) setFlipError(err error) {
	r.mu.Lock()
	r.flipErr = err
	r.mu.Unlock()
}

func (r *flakyPetRepo) flipFailures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flipures
}

type recordingScheduler struct {
	mu     sync.Mutex
	petIDs []string
}

func (s *recordingScheduler) ScheduleRepair(_ context.Context, petID string) error {
	s.mu.Lock()
	s.petIDs = append(s.petIDs, petID)
	s.mu.Unlock()
	return nil
}

func (s *recordingScheduler) scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.petIDs...)
}

type harness struct {
	pets      *petmemory.Repository
	flaky     *flakyPetRepo
	records   *adoptmemory.RecordStore
	scheduler *recordingScheduler
	service   *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pets := petmemory.NewRepository()
	flaky := &flakyPetRepo{Repository: pets}
	records := adoptmemory.NewRecordStore()
	scheduler := &recordingScheduler{}
	service := NewService(
		flaky,
		records,
		WithLogger(slog.Default()),
		WithRepairScheduler(scheduler),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
	return &harness{pets: pets, flaky: flaky, records: records, scheduler: scheduler, service: service}
}

func (h *harness) seedPet(t *testing.T, name string) string {
	t.Helper()
	pet, err := petdomain.NewPet("", name, "calico", "Lakeside Shelter")
	require.NoError(t, err)
	_, err = h.pets.Save(context.Background(), pet)
	require.NoError(t, err)
	return pet.ID
}

// requireConsistent asserts the core invariant: a pet is available iff no
// active record references it.
func (h *harness) requireConsistent(t *testing.T, petID string) {
	t.Helper()
	ctx := context.Background()
	proj, err := h.pets.GetByID(ctx, petID)
	require.NoError(t, err)
	record, err := h.records.FindActiveForPet(ctx, petID)
	require.NoError(t, err)
	assert.Equal(t, record == nil, proj.Entity.Available,
		"availability flag must mirror record existence for pet %s", petID)
}

func TestSubmitAdoption_HappyPath(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	saved, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, petID, saved.Entity.PetID)
	assert.Equal(t, "alice", saved.Entity.UserID)
	assert.NotEmpty(t, saved.Entity.ID)
	h.requireConsistent(t, petID)
}

func TestSubmitAdoption_UnknownPet(t *testing.T) {
	h := newHarness(t)
	_, err := h.service.SubmitAdoption(context.Background(), ports.SubmitAdoptionInput{PetID: "ghost", UserID: "alice"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAdoption_EmptyUser(t *testing.T) {
	h := newHarness(t)
	petID := h.seedPet(t, "Hazel")
	_, err := h.service.SubmitAdoption(context.Background(), ports.SubmitAdoptionInput{PetID: petID, UserID: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	h.requireConsistent(t, petID)
}

func TestSubmitAdoption_SequentialSecondApplicant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	_, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.NoError(t, err)

	_, err = h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "bob"})
	assert.ErrorIs(t, err, ErrAlreadyAdopted)
	h.requireConsistent(t, petID)
}

func TestSubmitAdoption_ConcurrentRaceHasOneWinner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	const applicants = 16
	var wg sync.WaitGroup
	errs := make([]error, applicants)
	for i := 0; i < applicants; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := string(rune('a' + n%26))
			_, errs[n] = h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: user + "-user"})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyAdopted)
		}
	}
	assert.Equal(t, 1, winners, "exactly one submission may win the race")
	h.requireConsistent(t, petID)
}

func TestCancelAdoption_RoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	saved, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.NoError(t, err)

	err = h.service.CancelAdoption(ctx, ports.CancelAdoptionInput{RecordID: saved.Entity.ID, RequestedBy: "alice"})
	require.NoError(t, err)
	h.requireConsistent(t, petID)

	// The slot is free again for the next applicant.
	_, err = h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "bob"})
	require.NoError(t, err)
	h.requireConsistent(t, petID)
}

func TestCancelAdoption_DoubleCancel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	saved, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.NoError(t, err)

	input := ports.CancelAdoptionInput{RecordID: saved.Entity.ID, RequestedBy: "alice"}
	require.NoError(t, h.service.CancelAdoption(ctx, input))
	assert.ErrorIs(t, h.service.CancelAdoption(ctx, input), ErrNotFound)
	h.requireConsistent(t, petID)
}

func TestCancelAdoption_OwnershipBoundary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	saved, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.NoError(t, err)

	// A foreign caller gets not-found, indistinguishable from a missing record.
	err = h.service.CancelAdoption(ctx, ports.CancelAdoptionInput{RecordID: saved.Entity.ID, RequestedBy: "bob"})
	assert.ErrorIs(t, err, ErrNotFound)
	h.requireConsistent(t, petID)

	// An administrative override succeeds for the same record.
	err = h.service.CancelAdoption(ctx, ports.CancelAdoptionInput{RecordID: saved.Entity.ID, RequestedBy: "root", AdminOverride: true})
	require.NoError(t, err)
	h.requireConsistent(t, petID)
}

func TestAdoptionLifecycle_TwoApplicants(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Pepper")

	first, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.NoError(t, err)
	h.requireConsistent(t, petID)

	_, err = h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "bob"})
	require.ErrorIs(t, err, ErrAlreadyAdopted)

	require.NoError(t, h.service.CancelAdoption(ctx, ports.CancelAdoptionInput{RecordID: first.Entity.ID, RequestedBy: "alice"}))
	h.requireConsistent(t, petID)

	second, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "bob"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Entity.ID, second.Entity.ID)
	h.requireConsistent(t, petID)

	list, err := h.service.ListByUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, petID, list[0].Entity.PetID)
}

func TestSubmitAdoption_FlipExhaustionDegradesToPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")
	h.flaky.setFlipError(errors.New("connection reset"))

	_, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.ErrorIs(t, err, ErrReconciliationPending)

	// The flip was retried up to the budget before giving up.
	assert.Equal(t, DefaultFlipAttempts, h.flaky.flipFailures())

	// The record committed; only the flag is stale. Repair was scheduled.
	record, ferr := h.records.FindActiveForPet(ctx, petID)
	require.NoError(t, ferr)
	require.NotNil(t, record)
	assert.Equal(t, []string{petID}, h.scheduler.scheduled())

	// Once storage recovers, the sweep restores the invariant.
	h.flaky.setFlipError(nil)
	repaired, serr := h.service.Sweep(ctx)
	require.NoError(t, serr)
	assert.Equal(t, 1, repaired)
	h.requireConsistent(t, petID)
}

func TestCancelAdoption_FlipExhaustionDegradesToPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	saved, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.NoError(t, err)

	h.flaky.setFlipError(errors.New("connection reset"))
	err = h.service.CancelAdoption(ctx, ports.CancelAdoptionInput{RecordID: saved.Entity.ID, RequestedBy: "alice"})
	require.ErrorIs(t, err, ErrReconciliationPending)

	// The record is gone but the pet still reads adopted.
	record, ferr := h.records.FindActiveForPet(ctx, petID)
	require.NoError(t, ferr)
	assert.Nil(t, record)
	assert.Equal(t, []string{petID}, h.scheduler.scheduled())

	h.flaky.setFlipError(nil)
	require.NoError(t, h.service.RepairPet(ctx, petID))
	h.requireConsistent(t, petID)
}

func TestCancelAdoption_ConflictingRestoreStillSucceeds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	saved, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.NoError(t, err)

	// A concurrent writer restored the flag before the cancel's flip; the
	// conditional write will see available=true instead of false.
	_, err = h.pets.SetAvailability(ctx, petID, true, false)
	require.NoError(t, err)

	err = h.service.CancelAdoption(ctx, ports.CancelAdoptionInput{RecordID: saved.Entity.ID, RequestedBy: "alice"})
	require.NoError(t, err)

	// The invariant already held, so nothing degraded and no repair was queued.
	assert.Empty(t, h.scheduler.scheduled())
	h.requireConsistent(t, petID)
}

func TestSubmitAdoption_DefensiveConflictCompensatesRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")
	h.flaky.setFlipError(petports.ErrConflict)

	_, err := h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.ErrorIs(t, err, ErrAlreadyAdopted)

	// A conflict is terminal, never retried, and the record was undone.
	assert.Equal(t, 1, h.flaky.flipFailures())
	record, ferr := h.records.FindActiveForPet(ctx, petID)
	require.NoError(t, ferr)
	assert.Nil(t, record)
}

func TestRepairPet_NoopWhenConsistent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	require.NoError(t, h.service.RepairPet(ctx, petID))
	assert.Zero(t, h.flaky.flipFailures())
	h.requireConsistent(t, petID)
}

func TestRepairPet_UnknownPet(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.service.RepairPet(context.Background(), "ghost"), ErrNotFound)
}

func TestSweep_RepairsOnlyDivergedPets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	healthy := h.seedPet(t, "Hazel")
	broken := h.seedPet(t, "Pepper")

	// Force a divergence on one pet: flip it without a record.
	_, err := h.pets.SetAvailability(ctx, broken, false, true)
	require.NoError(t, err)

	repaired, err := h.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	h.requireConsistent(t, healthy)
	h.requireConsistent(t, broken)
}

func TestHasActiveRecordForPet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	petID := h.seedPet(t, "Hazel")

	active, err := h.service.HasActiveRecordForPet(ctx, petID)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = h.service.SubmitAdoption(ctx, ports.SubmitAdoptionInput{PetID: petID, UserID: "alice"})
	require.NoError(t, err)

	active, err = h.service.HasActiveRecordForPet(ctx, petID)
	require.NoError(t, err)
	assert.True(t, active)
}
