//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pawhaven/adoption-api/internal/domains/pets/domain"
	"github.com/pawhaven/adoption-api/internal/domains/pets/ports"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("pawhaven_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newAvailablePet(t *testing.T, name string) *domain.Pet {
	t.Helper()
	pet, err := domain.NewPet("", name, "mixed", "Riverside Shelter")
	require.NoError(t, err)
	return pet
}

func TestPostgresRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	pet := newAvailablePet(t, "Buddy")
	pet.UpdateGender(domain.GenderMale)
	pet.Describe("Loves long walks.")

	saved, err := repo.Save(ctx, pet)
	require.NoError(t, err)
	assert.Equal(t, "Buddy", saved.Entity.Name)
	assert.True(t, saved.Entity.Available)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	retrieved, err := repo.GetByID(ctx, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buddy", retrieved.Entity.Name)
	assert.Equal(t, domain.GenderMale, retrieved.Entity.Gender)
	assert.Equal(t, "Loves long walks.", retrieved.Entity.Introduction)
}

func TestPostgresRepository_SetAvailabilityConditionalWrite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	pet := newAvailablePet(t, "Mochi")
	_, err := repo.Save(ctx, pet)
	require.NoError(t, err)

	// Expected state matches: the flip lands.
	flipped, err := repo.SetAvailability(ctx, pet.ID, false, true)
	require.NoError(t, err)
	assert.False(t, flipped.Entity.Available)

	// Expected state stale: zero rows affected, surfaced as conflict.
	_, err = repo.SetAvailability(ctx, pet.ID, false, true)
	assert.ErrorIs(t, err, ports.ErrConflict)

	// Unknown pet stays distinguishable from a lost race.
	_, err = repo.SetAvailability(ctx, "no-such-pet", false, true)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	restored, err := repo.SetAvailability(ctx, pet.ID, true, false)
	require.NoError(t, err)
	assert.True(t, restored.Entity.Available)
}

func TestPostgresRepository_SaveDoesNotTouchAvailability(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	pet := newAvailablePet(t, "Clover")
	_, err := repo.Save(ctx, pet)
	require.NoError(t, err)

	_, err = repo.SetAvailability(ctx, pet.ID, false, true)
	require.NoError(t, err)

	// A catalog update carries a stale Available=true on the entity; the
	// upsert must leave the persisted flag alone.
	require.NoError(t, pet.Rename("Clover II"))
	updated, err := repo.Save(ctx, pet)
	require.NoError(t, err)
	assert.Equal(t, "Clover II", updated.Entity.Name)
	assert.False(t, updated.Entity.Available)
}

func TestPostgresRepository_FindAvailableAndDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first := newAvailablePet(t, "Pixel")
	second := newAvailablePet(t, "Waffle")
	_, err := repo.Save(ctx, first)
	require.NoError(t, err)
	_, err = repo.Save(ctx, second)
	require.NoError(t, err)

	_, err = repo.SetAvailability(ctx, second.ID, false, true)
	require.NoError(t, err)

	available, err := repo.FindAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Pixel", available[0].Entity.Name)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), ports.ErrNotFound)
}
