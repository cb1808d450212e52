// Package core wires the record store to the operations exposed over HTTP and
// the CLI: per-kind list/create/update, the dashboard join and exports.
package core

import (
	"context"
	"log/slog"
	"time"

	"homeerp/pkg/domain"
)

// Service exposes record operations on top of a RecordStore.
type Service struct {
	store   domain.RecordStore
	metrics MetricsRecorder
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics sets the recorder receiving one observation per operation.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the logger used for failed operations.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used by Summary.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.RecordStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		metrics: NoopMetrics{},
		logger:  slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.RecordStore {
	return s.store
}

// Close releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}

// List returns every record of kind in insertion order.
func (s *Service) List(ctx context.Context, kind domain.Kind) (records []domain.Record, err error) {
	defer s.observe(ctx, "list."+string(kind), time.Now(), &err)
	return s.store.List(ctx, kind)
}

// Create stores a new record of kind built from fields.
func (s *Service) Create(ctx context.Context, kind domain.Kind, fields domain.Fields) (record domain.Record, err error) {
	defer s.observe(ctx, "create."+string(kind), time.Now(), &err)
	return s.store.Create(ctx, kind, fields)
}

// Update merges fields into the record of kind with id.
func (s *Service) Update(ctx context.Context, kind domain.Kind, id string, fields domain.Fields) (record domain.Record, err error) {
	defer s.observe(ctx, "update."+string(kind), time.Now(), &err)
	if id == "" {
		return nil, domain.NotFoundError{Kind: kind, ID: id}
	}
	return s.store.Update(ctx, kind, id, fields)
}

func (s *Service) observe(ctx context.Context, operation string, started time.Time, errp *error) {
	err := *errp
	s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
	if err != nil {
		s.logger.DebugContext(ctx, "operation failed", "operation", operation, "error", err)
	}
}
