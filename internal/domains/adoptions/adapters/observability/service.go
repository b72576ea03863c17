package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/pawhaven/adoption-api/internal/domains/adoptions/application"
	"github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
)

const tracerName = "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/observability/service"

// Service decorates the adoption reconciliation port with tracing, logging,
// and metrics.
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

// SubmitAdoption instruments the submission flow. Terminal conflicts and
// degraded reconciliation get their own counters so the dashboards can tell
// lost races from real trouble.
func (s *Service) SubmitAdoption(ctx context.Context, input ports.SubmitAdoptionInput) (*ports.RecordProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.SubmitAdoption",
		attribute.String("pet.id", input.PetID),
		attribute.String("user.id", input.UserID),
	)
	defer span.End()

	s.logInfo(ctx, "submitting adoption", slog.String("pet.id", input.PetID), slog.String("user.id", input.UserID))
	result, err := s.inner.SubmitAdoption(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrAlreadyAdopted):
			s.metrics.recordRejected(ctx)
		case errors.Is(err, application.ErrReconciliationPending):
			s.metrics.recordPending(ctx)
		}
		return nil, s.handleError(ctx, span, err, "failed to submit adoption", slog.String("pet.id", input.PetID))
	}
	if result != nil && result.Entity != nil {
		span.SetAttributes(attribute.String("record.id", result.Entity.ID))
		s.metrics.recordSubmitted(ctx)
		s.logInfo(ctx, "adoption submitted",
			slog.String("pet.id", result.Entity.PetID), slog.String("record.id", result.Entity.ID))
	}
	return result, nil
}

// CancelAdoption instruments the cancellation flow.
func (s *Service) CancelAdoption(ctx context.Context, input ports.CancelAdoptionInput) error {
	ctx, span := s.startSpan(ctx, "Service.CancelAdoption",
		attribute.String("record.id", input.RecordID),
		attribute.Bool("admin.override", input.AdminOverride),
	)
	defer span.End()

	s.logInfo(ctx, "canceling adoption", slog.String("record.id", input.RecordID))
	if err := s.inner.CancelAdoption(ctx, input); err != nil {
		if errors.Is(err, application.ErrReconciliationPending) {
			s.metrics.recordPending(ctx)
		}
		return s.handleError(ctx, span, err, "failed to cancel adoption", slog.String("record.id", input.RecordID))
	}
	s.metrics.recordCanceled(ctx)
	s.logInfo(ctx, "adoption canceled", slog.String("record.id", input.RecordID))
	return nil
}

// ListByUser instruments the caller-scoped listing.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*ports.RecordProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ListByUser", attribute.String("user.id", userID))
	defer span.End()

	result, err := s.inner.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list adoptions", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("record.result.count", len(result)))
	return result, nil
}

// RepairPet instruments the out-of-band repair path.
func (s *Service) RepairPet(ctx context.Context, petID string) error {
	ctx, span := s.startSpan(ctx, "Service.RepairPet", attribute.String("pet.id", petID))
	defer span.End()

	s.logInfo(ctx, "repairing pet availability", slog.String("pet.id", petID))
	if err := s.inner.RepairPet(ctx, petID); err != nil {
		return s.handleError(ctx, span, err, "failed to repair pet availability", slog.String("pet.id", petID))
	}
	s.metrics.recordRepaired(ctx)
	return nil
}

// HasActiveRecordForPet instruments the referential guard lookup.
func (s *Service) HasActiveRecordForPet(ctx context.Context, petID string) (bool, error) {
	ctx, span := s.startSpan(ctx, "Service.HasActiveRecordForPet", attribute.String("pet.id", petID))
	defer span.End()

	active, err := s.inner.HasActiveRecordForPet(ctx, petID)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to check active record", slog.String("pet.id", petID))
	}
	span.SetAttributes(attribute.Bool("record.active", active))
	return active, nil
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
	submitted metric.Int64Counter
	rejected  metric.Int64Counter
	canceled  metric.Int64Counter
	pending   metric.Int64Counter
	repaired  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	submitted, _ := m.Int64Counter("adoptions.service.submitted", metric.WithDescription("Number of adoptions submitted"))
	rejected, _ := m.Int64Counter("adoptions.service.rejected", metric.WithDescription("Number of submissions rejected because the pet was taken"))
	canceled, _ := m.Int64Counter("adoptions.service.canceled", metric.WithDescription("Number of adoptions canceled"))
	pending, _ := m.Int64Counter("adoptions.service.reconciliation_pending", metric.WithDescription("Number of operations that degraded to out-of-band repair"))
	repaired, _ := m.Int64Counter("adoptions.service.repaired", metric.WithDescription("Number of availability repairs applied"))
	return serviceMetrics{
		submitted: submitted,
		rejected:  rejected,
		canceled:  canceled,
		pending:   pending,
		repaired:  repaired,
	}
}

func (m serviceMetrics) recordSubmitted(ctx context.Context) { addCounter(ctx, m.submitted, 1) }
func (m serviceMetrics) recordRejected(ctx context.Context)  { addCounter(ctx, m.rejected, 1) }
func (m serviceMetrics) recordCanceled(ctx context.Context)  { addCounter(ctx, m.canceled, 1) }
func (m serviceMetrics) recordPending(ctx context.Context)   { addCounter(ctx, m.pending, 1) }
func (m serviceMetrics) recordRepaired(ctx context.Context)  { addCounter(ctx, m.repaired, 1) }

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
