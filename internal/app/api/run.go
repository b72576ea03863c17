package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	adoptmemory "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/memory"
	adoptobservability "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/observability"
	adoptpostgres "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptworkflows "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/workflows"
	adoptapp "github.com/pawhaven/adoption-api/internal/domains/adoptions/application"
	adoptports "github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
	petmemory "github.com/pawhaven/adoption-api/internal/domains/pets/adapters/memory"
	petobservability "github.com/pawhaven/adoption-api/internal/domains/pets/adapters/observability"
	petpostgres "github.com/pawhaven/adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petsapp "github.com/pawhaven/adoption-api/internal/domains/pets/application"
	petports "github.com/pawhaven/adoption-api/internal/domains/pets/ports"
	"github.com/pawhaven/adoption-api/internal/identity"
	"github.com/pawhaven/adoption-api/internal/identity/providerclient"
	staticidentity "github.com/pawhaven/adoption-api/internal/identity/static"
	"github.com/pawhaven/adoption-api/internal/platform/migrations"
	platformobservability "github.com/pawhaven/adoption-api/internal/platform/observability"
	platformpostgres "github.com/pawhaven/adoption-api/internal/platform/postgres"
	"github.com/pawhaven/adoption-api/internal/transport/httpserver"
)

const serviceName = "adoption-api"

// Run bootstraps the API process and blocks serving HTTP until the server exits.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return err
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

	scheduler, cleanupScheduler := buildRepairScheduler(cfg, instruments)
	defer cleanupScheduler()

	adoptionCore := adoptapp.NewService(
		petRepo,
		recordStore,
		adoptapp.WithLogger(logger),
		adoptapp.WithRepairScheduler(scheduler),
	)
	adoptionService := adoptobservability.New(
		adoptionCore,
		adoptobservability.WithLogger(logger),
		adoptobservability.WithTracer(instruments.Tracer("internal.adoptions.service")),
		adoptobservability.WithMeter(instruments.Meter("internal.adoptions.service")),
	)

	petCore := petsapp.NewService(petRepo, petsapp.WithAdoptionChecker(adoptionService))
	petService := petobservability.New(
		petCore,
		petobservability.WithLogger(logger),
		petobservability.WithTracer(instruments.Tracer("internal.pets.service")),
		petobservability.WithMeter(instruments.Meter("internal.pets.service")),
	)

	verifier, err := buildVerifier(cfg, logger)
	if err != nil {
		return err
	}

	router := httpserver.NewRouter(httpserver.Config{
		Pets:      petService,
		Adoptions: adoptionService,
		Verifier:  verifier,
		Logger:    logger,
	})

	logger.Info("adoption API listening", slog.String("addr", cfg.Addr()))
	return router.Run(cfg.Addr())
}

func buildStores(ctx context.Context, logger *slog.Logger) (petports.Repository, adoptports.RecordStore, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		return petmemory.NewRepository(), adoptmemory.NewRecordStore(), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("schema migration failed", slog.String("error", err.Error()))
	}
	return petpostgres.NewRepository(db), adoptpostgres.NewRecordStore(db), cleanup
}

func buildRepairScheduler(cfg Config, instruments *platformobservability.Instruments) (adoptports.RepairScheduler, func()) {
	logger := instruments.Logger
	temporalClient, err := connectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Warn("Temporal unavailable, repair degraded to reconciler sweep", slog.String("error", err.Error()))
		return adoptworkflows.NewLogOnlyRepairScheduler(logger), func() {}
	}
	logger.Info("Temporal repair workflows enabled", slog.String("namespace", temporalNamespace(cfg)))
	return adoptworkflows.NewTemporalRepairScheduler(temporalClient), temporalClient.Close
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	address := cfg.TemporalAddress
	if address == "" {
		address = client.DefaultHostPort
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  address,
		Namespace: temporalNamespace(cfg),
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func temporalNamespace(cfg Config) string {
	if cfg.TemporalNamespace != "" {
		return cfg.TemporalNamespace
	}
	return client.DefaultNamespace
}

func buildVerifier(cfg Config, logger *slog.Logger) (identity.Verifier, error) {
	if cfg.IdentityProviderURL != "" {
		logger.Info("identity provider configured", slog.String("url", cfg.IdentityProviderURL))
		return providerclient.NewClient(providerclient.Config{BaseURL: cfg.IdentityProviderURL}), nil
	}
	if cfg.AuthStaticTokens != "" {
		principals, err := staticidentity.ParseTokens(cfg.AuthStaticTokens)
		if err != nil {
			return nil, err
		}
		logger.Warn("using static token verifier", slog.Int("tokens", len(principals)))
		return staticidentity.NewVerifier(principals), nil
	}
	logger.Warn("no identity provider configured, all authenticated routes will reject")
	return staticidentity.NewVerifier(nil), nil
}
