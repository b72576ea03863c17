package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/adoption-api/internal/domains/pets/adapters/memory"
	"github.com/pawhaven/adoption-api/internal/domains/pets/ports"
)

type stubChecker struct {
	active bool
}

func (s stubChecker) HasActiveRecordForPet(context.Context, string) (bool, error) {
	return s.active, nil
}

func TestCreatePet(t *testing.T) {
	service := NewService(memory.NewRepository())

	saved, err := service.CreatePet(context.Background(), ports.CreatePetInput{
		Name:        "Maple",
		Variety:     "corgi",
		ShelterName: "Hilltop Shelter",
		Gender:      "female",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.Entity.ID)
	assert.True(t, saved.Entity.Available)
	assert.Equal(t, "available", saved.Entity.Status())
}

func TestCreatePet_InvalidInput(t *testing.T) {
	service := NewService(memory.NewRepository())

	_, err := service.CreatePet(context.Background(), ports.CreatePetInput{Name: "", Variety: "corgi", ShelterName: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreatePet_ReuploadDoesNotResetAvailability(t *testing.T) {
	repo := memory.NewRepository()
	service := NewService(repo)
	ctx := context.Background()

	input := ports.CreatePetInput{ID: "pet-1", Name: "Maple", Variety: "corgi", ShelterName: "Hilltop Shelter"}
	saved, err := service.CreatePet(ctx, input)
	require.NoError(t, err)
	require.True(t, saved.Entity.Available)

	// The pet gets adopted out of band.
	_, err = repo.SetAvailability(ctx, "pet-1", false, true)
	require.NoError(t, err)

	// An admin re-upload of the same id must not resurrect the flag.
	reuploaded, err := service.CreatePet(ctx, input)
	require.NoError(t, err)
	assert.False(t, reuploaded.Entity.Available)
	assert.Equal(t, "adopted", reuploaded.Entity.Status())
}

func TestUpdatePet_PartialMutation(t *testing.T) {
	repo := memory.NewRepository()
	service := NewService(repo)
	ctx := context.Background()

	saved, err := service.CreatePet(ctx, ports.CreatePetInput{Name: "Maple", Variety: "corgi", ShelterName: "Hilltop Shelter"})
	require.NoError(t, err)

	newName := "Maple II"
	updated, err := service.UpdatePet(ctx, ports.UpdatePetInput{ID: saved.Entity.ID, Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Maple II", updated.Entity.Name)
	// Untouched fields survive the partial update.
	assert.Equal(t, "corgi", updated.Entity.Variety)
	assert.Equal(t, "Hilltop Shelter", updated.Entity.ShelterName)
}

func TestUpdatePet_UnknownPet(t *testing.T) {
	service := NewService(memory.NewRepository())
	name := "x"
	_, err := service.UpdatePet(context.Background(), ports.UpdatePetInput{ID: "ghost", Name: &name})
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDelete_GuardedByActiveAdoption(t *testing.T) {
	repo := memory.NewRepository()
	service := NewService(repo, WithAdoptionChecker(stubChecker{active: true}))
	ctx := context.Background()

	saved, err := service.CreatePet(ctx, ports.CreatePetInput{Name: "Maple", Variety: "corgi", ShelterName: "Hilltop Shelter"})
	require.NoError(t, err)

	err = service.Delete(ctx, saved.Entity.ID)
	assert.ErrorIs(t, err, ErrHasActiveAdoption)

	// Still present.
	_, err = service.GetByID(ctx, saved.Entity.ID)
	require.NoError(t, err)
}

func TestDelete_AllowedWhenNoActiveRecord(t *testing.T) {
	repo := memory.NewRepository()
	service := NewService(repo, WithAdoptionChecker(stubChecker{active: false}))
	ctx := context.Background()

	saved, err := service.CreatePet(ctx, ports.CreatePetInput{Name: "Maple", Variety: "corgi", ShelterName: "Hilltop Shelter"})
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, saved.Entity.ID))
	_, err = service.GetByID(ctx, saved.Entity.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
