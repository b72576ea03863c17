package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	adoptmemory "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/memory"
	adoptpostgres "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptapp "github.com/pawhaven/adoption-api/internal/domains/adoptions/application"
	adoptports "github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
	petmemory "github.com/pawhaven/adoption-api/internal/domains/pets/adapters/memory"
	petpostgres "github.com/pawhaven/adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petports "github.com/pawhaven/adoption-api/internal/domains/pets/ports"
	"github.com/pawhaven/adoption-api/internal/platform/migrations"
	platformobservability "github.com/pawhaven/adoption-api/internal/platform/observability"
	platformpostgres "github.com/pawhaven/adoption-api/internal/platform/postgres"
	adoptactivities "github.com/pawhaven/adoption-api/internal/platform/temporal/activities/adoptions"
	repairworkflows "github.com/pawhaven/adoption-api/internal/platform/temporal/workflows/adoptions"
)

func main() {
	ctx := context.Background()
	const serviceName = "adoption-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	petRepo, recordStore, cleanupStores := buildStores(ctx, logger)
	defer cleanupStores()

	reconciliation := adoptapp.NewService(petRepo, recordStore, adoptapp.WithLogger(logger))
	activities := adoptactivities.NewActivities(reconciliation)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, repairworkflows.RepairTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(repairworkflows.AvailabilityRepairWorkflow, workflow.RegisterOptions{Name: repairworkflows.AvailabilityRepairWorkflowName})
	w.RegisterActivityWithOptions(activities.RepairAvailability, activity.RegisterOptions{Name: adoptactivities.RepairAvailabilityActivityName})

	logger.Info("worker listening", slog.String("taskQueue", repairworkflows.RepairTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildStores(ctx context.Context, logger *slog.Logger) (petports.Repository, adoptports.RecordStore, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		logger.Warn("worker running against in-memory stores; repairs will not persist")
		return petmemory.NewRepository(), adoptmemory.NewRecordStore(), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("schema migration failed", slog.String("error", err.Error()))
	}
	return petpostgres.NewRepository(db), adoptpostgres.NewRecordStore(db), cleanup
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
