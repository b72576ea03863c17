package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/pawhaven/adoption-api/internal/domains/pets/ports"
)

const tracerName = "github.com/pawhaven/adoption-api/internal/domains/pets/adapters/observability/service"

// Service decorates the pets application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreatePet persists a new catalog entry with instrumentation.
func (s *Service) CreatePet(ctx context.Context, input ports.CreatePetInput) (*ports.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.CreatePet", attribute.String("pet.name", input.Name))
	defer span.End()

	s.logInfo(ctx, "creating pet", slog.String("pet.name", input.Name))
	result, err := s.inner.CreatePet(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create pet", slog.String("pet.name", input.Name))
	}
	if result != nil && result.Entity != nil {
		span.SetAttributes(attribute.String("pet.id", result.Entity.ID))
		s.metrics.recordCreated(ctx)
		s.logInfo(ctx, "pet created", slog.String("pet.id", result.Entity.ID))
	}
	return result, nil
}

// UpdatePet applies a partial catalog mutation.
func (s *Service) UpdatePet(ctx context.Context, input ports.UpdatePetInput) (*ports.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdatePet", attribute.String("pet.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "updating pet", slog.String("pet.id", input.ID))
	result, err := s.inner.UpdatePet(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update pet", slog.String("pet.id", input.ID))
	}
	s.metrics.recordUpdated(ctx)
	return result, nil
}

// GetByID loads a single pet.
func (s *Service) GetByID(ctx context.Context, id string) (*ports.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.String("pet.id", id))
	defer span.End()

	result, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load pet", slog.String("pet.id", id))
	}
	return result, nil
}

// Delete removes a pet, subject to the active-adoption guard.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "Service.Delete", attribute.String("pet.id", id))
	defer span.End()

	s.logInfo(ctx, "deleting pet", slog.String("pet.id", id))
	if err := s.inner.Delete(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete pet", slog.String("pet.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "pet deleted", slog.String("pet.id", id))
	return nil
}

// FindAvailable lists pets open for adoption.
func (s *Service) FindAvailable(ctx context.Context) ([]*ports.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.FindAvailable")
	defer span.End()

	result, err := s.inner.FindAvailable(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to find available pets")
	}
	span.SetAttributes(attribute.Int("pet.result.count", len(result)))
	return result, nil
}

// List exposes the whole catalog for admin use cases.
func (s *Service) List(ctx context.Context) ([]*ports.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.List")
	defer span.End()

	result, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list pets")
	}
	span.SetAttributes(attribute.Int("pet.result.count", len(result)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	petsCreated metric.Int64Counter
	petsUpdated metric.Int64Counter
	petsDeleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	petsCreated, _ := m.Int64Counter("pets.service.created", metric.WithDescription("Number of pets created"))
	petsUpdated, _ := m.Int64Counter("pets.service.updated", metric.WithDescription("Number of pets updated"))
	petsDeleted, _ := m.Int64Counter("pets.service.deleted", metric.WithDescription("Number of pets deleted"))
	return serviceMetrics{
		petsCreated: petsCreated,
		petsUpdated: petsUpdated,
		petsDeleted: petsDeleted,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context) { addCounter(ctx, m.petsCreated, 1) }
func (m serviceMetrics) recordUpdated(ctx context.Context) { addCounter(ctx, m.petsUpdated, 1) }
func (m serviceMetrics) recordDeleted(ctx context.Context) { addCounter(ctx, m.petsDeleted, 1) }

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
