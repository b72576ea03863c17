// Command reconciler runs one availability sweep: every pet whose flag
// disagrees with the adoption record store is repaired. Intended to run on a
// schedule as the safety net behind the durable repair workflows.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	adoptpostgres "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptapp "github.com/pawhaven/adoption-api/internal/domains/adoptions/application"
	petpostgres "github.com/pawhaven/adoption-api/internal/domains/pets/adapters/persistence/postgres"
	"github.com/pawhaven/adoption-api/internal/platform/migrations"
	platformpostgres "github.com/pawhaven/adoption-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot reconcile")
	}
	if err := migrations.Run(db); err != nil {
		log.Fatalf("schema migration failed: %v", err)
	}

	service := adoptapp.NewService(
		petpostgres.NewRepository(db),
		adoptpostgres.NewRecordStore(db),
		adoptapp.WithLogger(logger),
	)
	repaired, err := service.Sweep(ctx)
	if err != nil {
		log.Fatalf("availability sweep failed after %d repairs: %v", repaired, err)
	}
	logger.Info("availability sweep completed", slog.Int("repaired", repaired))
}
